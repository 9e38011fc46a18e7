package schemas

// Action names one of the fixed browser operations a task can request.
type Action string

const (
	ActionNavigate        Action = "navigate"
	ActionScreenshot      Action = "screenshot"
	ActionGetContent      Action = "get_content"
	ActionClick           Action = "click"
	ActionFill            Action = "fill"
	ActionEvaluate        Action = "evaluate"
	ActionGetCookies      Action = "get_cookies"
	ActionSetCookies      Action = "set_cookies"
	ActionDeleteCookies   Action = "delete_cookies"
	ActionClearCookies    Action = "clear_cookies"
	ActionGetStorage      Action = "get_storage"
	ActionSetStorage      Action = "set_storage"
	ActionDeleteStorage   Action = "delete_storage"
	ActionClearStorage    Action = "clear_storage"
	ActionSetGeolocation  Action = "set_geolocation"
	ActionGeneratePDF     Action = "generate_pdf"
	ActionWaitForSelector Action = "wait_for_selector"
	ActionWaitForTimeout  Action = "wait_for_timeout"
	ActionPressKey        Action = "press_key"
	ActionTypeText        Action = "type_text"
	ActionMouseClick      Action = "mouse_click"
	ActionMouseMove       Action = "mouse_move"
	ActionDragAndDrop     Action = "drag_and_drop"
	ActionUploadFile      Action = "upload_file"
)

// paramFactories is the closed set of actions. Each entry builds the empty,
// typed parameter struct that the action's parameter bag decodes into.
var paramFactories = map[Action]func() Params{
	ActionNavigate:        func() Params { return &NavigateParams{} },
	ActionScreenshot:      func() Params { return &ScreenshotParams{} },
	ActionGetContent:      func() Params { return &GetContentParams{} },
	ActionClick:           func() Params { return &ClickParams{} },
	ActionFill:            func() Params { return &FillParams{} },
	ActionEvaluate:        func() Params { return &EvaluateParams{} },
	ActionGetCookies:      func() Params { return &GetCookiesParams{} },
	ActionSetCookies:      func() Params { return &SetCookiesParams{} },
	ActionDeleteCookies:   func() Params { return &DeleteCookiesParams{} },
	ActionClearCookies:    func() Params { return &ClearCookiesParams{} },
	ActionGetStorage:      func() Params { return &GetStorageParams{} },
	ActionSetStorage:      func() Params { return &SetStorageParams{} },
	ActionDeleteStorage:   func() Params { return &DeleteStorageParams{} },
	ActionClearStorage:    func() Params { return &ClearStorageParams{} },
	ActionSetGeolocation:  func() Params { return &SetGeolocationParams{} },
	ActionGeneratePDF:     func() Params { return &GeneratePDFParams{} },
	ActionWaitForSelector: func() Params { return &WaitForSelectorParams{} },
	ActionWaitForTimeout:  func() Params { return &WaitForTimeoutParams{} },
	ActionPressKey:        func() Params { return &PressKeyParams{} },
	ActionTypeText:        func() Params { return &TypeTextParams{} },
	ActionMouseClick:      func() Params { return &MouseClickParams{} },
	ActionMouseMove:       func() Params { return &MouseMoveParams{} },
	ActionDragAndDrop:     func() Params { return &DragAndDropParams{} },
	ActionUploadFile:      func() Params { return &UploadFileParams{} },
}

// actionOrder is the documented listing order.
var actionOrder = []Action{
	ActionNavigate, ActionScreenshot, ActionGetContent, ActionClick, ActionFill,
	ActionEvaluate, ActionGetCookies, ActionSetCookies, ActionDeleteCookies,
	ActionClearCookies, ActionGetStorage, ActionSetStorage, ActionDeleteStorage,
	ActionClearStorage, ActionSetGeolocation, ActionGeneratePDF,
	ActionWaitForSelector, ActionWaitForTimeout, ActionPressKey, ActionTypeText,
	ActionMouseClick, ActionMouseMove, ActionDragAndDrop, ActionUploadFile,
}

// Actions returns every supported action in documented order.
func Actions() []Action {
	out := make([]Action, len(actionOrder))
	copy(out, actionOrder)
	return out
}

// Valid reports whether a is one of the supported actions. Matching is exact
// and case-sensitive.
func (a Action) Valid() bool {
	_, ok := paramFactories[a]
	return ok
}

// NewParams returns the empty typed parameter struct for a, or false if a is
// not a supported action.
func NewParams(a Action) (Params, bool) {
	factory, ok := paramFactories[a]
	if !ok {
		return nil, false
	}
	return factory(), true
}
