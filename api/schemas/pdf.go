package schemas

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
)

// PDFOptions controls generate_pdf rendering.
type PDFOptions struct {
	// Format is a paper name such as "A4" or "Letter"; it wins over Width/Height.
	Format              string    `json:"format,omitempty"`
	Landscape           bool      `json:"landscape,omitempty"`
	PrintBackground     bool      `json:"print_background,omitempty"`
	Scale               float64   `json:"scale,omitempty"`
	Width               Length    `json:"width,omitempty"`
	Height              Length    `json:"height,omitempty"`
	Margin              PDFMargin `json:"margin,omitempty"`
	PageRanges          string    `json:"page_ranges,omitempty"`
	DisplayHeaderFooter bool      `json:"display_header_footer,omitempty"`
	HeaderTemplate      string    `json:"header_template,omitempty"`
	FooterTemplate      string    `json:"footer_template,omitempty"`
	PreferCSSPageSize   bool      `json:"prefer_css_page_size,omitempty"`
}

// PDFMargin holds the four page margins.
type PDFMargin struct {
	Top    Length `json:"top,omitempty"`
	Right  Length `json:"right,omitempty"`
	Bottom Length `json:"bottom,omitempty"`
	Left   Length `json:"left,omitempty"`
}

// Validate checks option ranges and that every length parses.
func (o PDFOptions) Validate() error {
	if o.Format != "" {
		if _, _, ok := PaperSize(o.Format); !ok {
			return invalid("pdf_options", "unknown paper format %q", o.Format)
		}
	}
	if o.Scale != 0 && (o.Scale < 0.1 || o.Scale > 2) {
		return invalid("pdf_options", "scale must be between 0.1 and 2, got %v", o.Scale)
	}
	lengths := map[string]Length{
		"width": o.Width, "height": o.Height,
		"margin.top": o.Margin.Top, "margin.right": o.Margin.Right,
		"margin.bottom": o.Margin.Bottom, "margin.left": o.Margin.Left,
	}
	for name, l := range lengths {
		if _, err := l.Inches(); err != nil {
			return invalid("pdf_options", "%s: %v", name, err)
		}
	}
	return nil
}

// Length is a CSS-style length such as "10px", "1.5in", "2cm" or "20mm".
// Bare numbers, in JSON or in text, are pixels.
type Length string

// UnmarshalJSON accepts either a string or a number.
func (l *Length) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = Length(strings.TrimSpace(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("length must be a string or a number, got %s", string(b))
	}
	*l = Length(strconv.FormatFloat(f, 'f', -1, 64) + "px")
	return nil
}

const pixelsPerInch = 96.0

var unitsPerInch = map[string]float64{
	"px": pixelsPerInch,
	"in": 1,
	"cm": 2.54,
	"mm": 25.4,
}

// Inches converts l to inches. The empty length is zero.
func (l Length) Inches() (float64, error) {
	s := strings.ToLower(strings.TrimSpace(string(l)))
	if s == "" {
		return 0, nil
	}

	unit := "px"
	if len(s) > 2 {
		if _, ok := unitsPerInch[s[len(s)-2:]]; ok {
			unit = s[len(s)-2:]
			s = s[:len(s)-2]
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse length %q", string(l))
	}
	if v < 0 {
		return 0, fmt.Errorf("length %q must not be negative", string(l))
	}
	return v / unitsPerInch[unit], nil
}

// paperSizes are width and height in inches.
var paperSizes = map[string][2]float64{
	"letter":  {8.5, 11},
	"legal":   {8.5, 14},
	"tabloid": {11, 17},
	"ledger":  {17, 11},
	"a0":      {33.1, 46.8},
	"a1":      {23.4, 33.1},
	"a2":      {16.54, 23.4},
	"a3":      {11.7, 16.54},
	"a4":      {8.27, 11.7},
	"a5":      {5.83, 8.27},
	"a6":      {4.13, 5.83},
}

// PaperSize returns the portrait width and height in inches of a named
// paper format. Names are case-insensitive.
func PaperSize(format string) (width, height float64, ok bool) {
	size, ok := paperSizes[strings.ToLower(format)]
	return size[0], size[1], ok
}
