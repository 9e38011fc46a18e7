package schemas

import (
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
)

// Params is the typed parameter set of one action. Validate reports missing
// required parameters with the exact message surfaced to callers.
type Params interface {
	Validate() error
}

// Defaulter is implemented by parameter sets with non-zero defaults.
type Defaulter interface {
	ApplyDefaults()
}

// Navigator is implemented by parameter sets that accept an optional url to
// visit before the action runs.
type Navigator interface {
	Target() Navigation
}

// LoadState is a page readiness milestone.
type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
	LoadStateCommit           LoadState = "commit"
)

// Valid reports whether s is a known load state.
func (s LoadState) Valid() bool {
	switch s {
	case LoadStateLoad, LoadStateDOMContentLoaded, LoadStateNetworkIdle, LoadStateCommit:
		return true
	}
	return false
}

// OrDefault returns s, or load when s is empty.
func (s LoadState) OrDefault() LoadState {
	if s == "" {
		return LoadStateLoad
	}
	return s
}

// Navigation is the optional pre-step shared by most actions.
type Navigation struct {
	URL       string    `json:"url"`
	WaitUntil LoadState `json:"wait_until"`
}

// Target implements Navigator.
func (n Navigation) Target() Navigation {
	return Navigation{URL: n.URL, WaitUntil: n.WaitUntil.OrDefault()}
}

func (n Navigation) validate() error {
	if n.WaitUntil != "" && !n.WaitUntil.Valid() {
		return invalid("wait_until", "%q is not one of load, domcontentloaded, networkidle, commit", n.WaitUntil)
	}
	return nil
}

// StorageType selects window.localStorage or window.sessionStorage.
type StorageType string

const (
	LocalStorage   StorageType = "localStorage"
	SessionStorage StorageType = "sessionStorage"
)

// StorageScope is embedded by every storage action.
type StorageScope struct {
	StorageType StorageType `json:"storage_type"`
}

func (s *StorageScope) ApplyDefaults() {
	if s.StorageType == "" {
		s.StorageType = LocalStorage
	}
}

func (s StorageScope) validate() error {
	switch s.StorageType {
	case "", LocalStorage, SessionStorage:
		return nil
	}
	return &ParameterError{
		Names:   []string{"storage_type"},
		Message: fmt.Sprintf("invalid storage_type: %s", s.StorageType),
	}
}

type NavigateParams struct {
	Navigation
}

func (p *NavigateParams) Validate() error {
	if p.URL == "" {
		return missing("URL is required for navigate action", "url")
	}
	return p.Navigation.validate()
}

type ScreenshotParams struct {
	Navigation
	// Path defaults to the configured screenshot path when empty.
	Path     string `json:"path"`
	FullPage bool   `json:"full_page"`
}

func (p *ScreenshotParams) Validate() error { return p.Navigation.validate() }

type GetContentParams struct {
	Navigation
}

func (p *GetContentParams) Validate() error { return p.Navigation.validate() }

type ClickParams struct {
	Navigation
	Selector string `json:"selector"`
	// WaitState is awaited after the click.
	WaitState LoadState `json:"wait_state"`
}

func (p *ClickParams) ApplyDefaults() { p.WaitState = p.WaitState.OrDefault() }

func (p *ClickParams) Validate() error {
	if p.Selector == "" {
		return missing("Selector is required for click action", "selector")
	}
	if p.WaitState != "" && !p.WaitState.Valid() {
		return invalid("wait_state", "%q is not one of load, domcontentloaded, networkidle, commit", p.WaitState)
	}
	return p.Navigation.validate()
}

type FillParams struct {
	Navigation
	Selector string `json:"selector"`
	// Value may be the empty string but must be present.
	Value *string `json:"value"`
}

func (p *FillParams) Validate() error {
	if p.Selector == "" || p.Value == nil {
		return missing("Selector and value are required for fill action", "selector", "value")
	}
	return p.Navigation.validate()
}

type EvaluateParams struct {
	Navigation
	Script string `json:"script"`
}

func (p *EvaluateParams) Validate() error {
	if p.Script == "" {
		return missing("Script is required for evaluate action", "script")
	}
	return p.Navigation.validate()
}

type GetCookiesParams struct {
	Navigation
}

func (p *GetCookiesParams) Validate() error { return p.Navigation.validate() }

type SetCookiesParams struct {
	Cookies []Cookie `json:"cookies"`
}

func (p *SetCookiesParams) ApplyDefaults() {
	if p.Cookies == nil {
		p.Cookies = []Cookie{}
	}
}

func (p *SetCookiesParams) Validate() error {
	for i, c := range p.Cookies {
		if err := c.Validate(); err != nil {
			return invalid("cookies", "cookie %d: %v", i, err)
		}
	}
	return nil
}

type DeleteCookiesParams struct {
	// CookieName empty makes the action a no-op.
	CookieName string `json:"cookie_name"`
}

func (p *DeleteCookiesParams) Validate() error { return nil }

type ClearCookiesParams struct{}

func (p *ClearCookiesParams) Validate() error { return nil }

type GetStorageParams struct {
	Navigation
	StorageScope
	// StorageKey empty returns every item.
	StorageKey string `json:"storage_key"`
}

func (p *GetStorageParams) Validate() error {
	if err := p.StorageScope.validate(); err != nil {
		return err
	}
	return p.Navigation.validate()
}

type SetStorageParams struct {
	Navigation
	StorageScope
	StorageKey   string          `json:"storage_key"`
	StorageValue json.RawMessage `json:"storage_value"`
}

func (p *SetStorageParams) Validate() error {
	if p.StorageKey == "" {
		return missing("storage_key is required", "storage_key")
	}
	if err := p.StorageScope.validate(); err != nil {
		return err
	}
	return p.Navigation.validate()
}

// Value renders storage_value the way Web Storage stores it: strings verbatim,
// anything else as its JSON text, absent as "null".
func (p *SetStorageParams) Value() string {
	raw := strings.TrimSpace(string(p.StorageValue))
	if raw == "" || raw == "null" {
		return "null"
	}
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return s
	}
	return raw
}

type DeleteStorageParams struct {
	Navigation
	StorageScope
	// StorageKey empty makes the action a no-op.
	StorageKey string `json:"storage_key"`
}

func (p *DeleteStorageParams) Validate() error {
	if err := p.StorageScope.validate(); err != nil {
		return err
	}
	return p.Navigation.validate()
}

type ClearStorageParams struct {
	Navigation
	StorageScope
}

func (p *ClearStorageParams) Validate() error {
	if err := p.StorageScope.validate(); err != nil {
		return err
	}
	return p.Navigation.validate()
}

type SetGeolocationParams struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
}

func (p *SetGeolocationParams) Validate() error {
	if p.Latitude == nil || p.Longitude == nil {
		return missing("latitude and longitude are required", "latitude", "longitude")
	}
	if *p.Latitude < -90 || *p.Latitude > 90 {
		return invalid("latitude", "%v is outside [-90, 90]", *p.Latitude)
	}
	if *p.Longitude < -180 || *p.Longitude > 180 {
		return invalid("longitude", "%v is outside [-180, 180]", *p.Longitude)
	}
	if p.Accuracy < 0 {
		return invalid("accuracy", "must not be negative")
	}
	return nil
}

type GeneratePDFParams struct {
	Navigation
	// Path defaults to the configured PDF path when empty.
	Path       string     `json:"path"`
	PDFOptions PDFOptions `json:"pdf_options"`
}

func (p *GeneratePDFParams) Validate() error {
	if err := p.PDFOptions.Validate(); err != nil {
		return err
	}
	return p.Navigation.validate()
}

type WaitForSelectorParams struct {
	Navigation
	Selector string `json:"selector"`
	// Timeout is in milliseconds.
	Timeout *float64 `json:"timeout"`
}

const (
	DefaultSelectorTimeoutMs = 30000
	DefaultWaitTimeoutMs     = 1000
	// MaxTimeoutMs is one day; longer values would overflow a time.Duration
	// long before they meant anything to a one-shot task.
	MaxTimeoutMs = 24 * 60 * 60 * 1000
)

func validateTimeout(ms *float64) error {
	switch {
	case ms == nil:
		return nil
	case *ms < 0:
		return invalid("timeout", "must not be negative")
	case *ms > MaxTimeoutMs:
		return invalid("timeout", "%v exceeds the maximum of %d ms", *ms, MaxTimeoutMs)
	}
	return nil
}

func (p *WaitForSelectorParams) ApplyDefaults() {
	if p.Timeout == nil {
		t := float64(DefaultSelectorTimeoutMs)
		p.Timeout = &t
	}
}

func (p *WaitForSelectorParams) Validate() error {
	if p.Selector == "" {
		return missing("selector is required", "selector")
	}
	if err := validateTimeout(p.Timeout); err != nil {
		return err
	}
	return p.Navigation.validate()
}

type WaitForTimeoutParams struct {
	// Timeout is in milliseconds.
	Timeout *float64 `json:"timeout"`
}

func (p *WaitForTimeoutParams) ApplyDefaults() {
	if p.Timeout == nil {
		t := float64(DefaultWaitTimeoutMs)
		p.Timeout = &t
	}
}

func (p *WaitForTimeoutParams) Validate() error {
	return validateTimeout(p.Timeout)
}

type PressKeyParams struct {
	Navigation
	Key string `json:"key"`
}

func (p *PressKeyParams) Validate() error {
	if p.Key == "" {
		return missing("key is required", "key")
	}
	return p.Navigation.validate()
}

type TypeTextParams struct {
	Navigation
	Value string `json:"value"`
}

func (p *TypeTextParams) Validate() error {
	if p.Value == "" {
		return missing("value is required", "value")
	}
	return p.Navigation.validate()
}

// MouseButton names a pointer button for mouse_click.
type MouseButton string

const (
	MouseButtonLeft   MouseButton = "left"
	MouseButtonRight  MouseButton = "right"
	MouseButtonMiddle MouseButton = "middle"
)

type MouseClickParams struct {
	Navigation
	X      *float64    `json:"x"`
	Y      *float64    `json:"y"`
	Button MouseButton `json:"button"`
}

func (p *MouseClickParams) ApplyDefaults() {
	if p.Button == "" {
		p.Button = MouseButtonLeft
	}
}

func (p *MouseClickParams) Validate() error {
	if p.X == nil || p.Y == nil {
		return missing("x and y coordinates are required", "x", "y")
	}
	switch p.Button {
	case "", MouseButtonLeft, MouseButtonRight, MouseButtonMiddle:
	default:
		return invalid("button", "%q is not one of left, right, middle", p.Button)
	}
	return p.Navigation.validate()
}

type MouseMoveParams struct {
	Navigation
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p *MouseMoveParams) Validate() error {
	if p.X == nil || p.Y == nil {
		return missing("x and y coordinates are required", "x", "y")
	}
	return p.Navigation.validate()
}

type DragAndDropParams struct {
	Navigation
	SourceSelector string `json:"source_selector"`
	TargetSelector string `json:"target_selector"`
}

func (p *DragAndDropParams) Validate() error {
	if p.SourceSelector == "" || p.TargetSelector == "" {
		return missing("source_selector and target_selector are required", "source_selector", "target_selector")
	}
	return p.Navigation.validate()
}

type UploadFileParams struct {
	Navigation
	Selector string `json:"selector"`
	FilePath string `json:"file_path"`
}

func (p *UploadFileParams) Validate() error {
	if p.Selector == "" || p.FilePath == "" {
		return missing("selector and file_path are required", "selector", "file_path")
	}
	return p.Navigation.validate()
}
