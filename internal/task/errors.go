package task

// InvalidJSONError reports a task argument that is not JSON at all. It is
// the only decode failure that callers treat as a process-level error.
type InvalidJSONError struct {
	Err error
}

func (e *InvalidJSONError) Error() string { return "Invalid JSON: " + e.Err.Error() }

func (e *InvalidJSONError) Unwrap() error { return e.Err }
