package cdp

import (
	"fmt"

	"github.com/chromedp/cdproto/page"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

// printParams translates PDF options into Page.printToPDF parameters.
// Explicit width and height take precedence over format; the default paper
// is Letter.
func printParams(opts schemas.PDFOptions) (*page.PrintToPDFParams, error) {
	width, height, _ := schemas.PaperSize("letter")
	if opts.Format != "" {
		w, h, ok := schemas.PaperSize(opts.Format)
		if !ok {
			return nil, fmt.Errorf("unknown paper format %q", opts.Format)
		}
		width, height = w, h
	}

	if opts.Width != "" {
		w, err := opts.Width.Inches()
		if err != nil {
			return nil, err
		}
		width = w
	}
	if opts.Height != "" {
		h, err := opts.Height.Inches()
		if err != nil {
			return nil, err
		}
		height = h
	}

	var margins [4]float64
	for i, l := range []schemas.Length{opts.Margin.Top, opts.Margin.Right, opts.Margin.Bottom, opts.Margin.Left} {
		in, err := l.Inches()
		if err != nil {
			return nil, err
		}
		margins[i] = in
	}

	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	p := page.PrintToPDF().
		WithPaperWidth(width).
		WithPaperHeight(height).
		WithMarginTop(margins[0]).
		WithMarginRight(margins[1]).
		WithMarginBottom(margins[2]).
		WithMarginLeft(margins[3]).
		WithLandscape(opts.Landscape).
		WithPrintBackground(opts.PrintBackground).
		WithScale(scale).
		WithDisplayHeaderFooter(opts.DisplayHeaderFooter).
		WithPreferCSSPageSize(opts.PreferCSSPageSize)

	if opts.PageRanges != "" {
		p = p.WithPageRanges(opts.PageRanges)
	}
	if opts.DisplayHeaderFooter {
		p = p.WithHeaderTemplate(opts.HeaderTemplate).WithFooterTemplate(opts.FooterTemplate)
	}
	return p, nil
}
