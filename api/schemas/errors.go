package schemas

import "fmt"

// ParameterError reports a missing or malformed task parameter. Its message is
// surfaced verbatim in the failure envelope.
type ParameterError struct {
	// Names lists the parameters involved, in the order they are mentioned.
	Names   []string
	Message string
}

func (e *ParameterError) Error() string { return e.Message }

// missing builds a ParameterError for absent required parameters.
func missing(message string, names ...string) error {
	return &ParameterError{Names: names, Message: message}
}

// invalid builds a ParameterError for a parameter with an unusable value.
func invalid(name string, format string, args ...interface{}) error {
	return &ParameterError{
		Names:   []string{name},
		Message: fmt.Sprintf("invalid %s: %s", name, fmt.Sprintf(format, args...)),
	}
}

// UnknownActionError reports an action name outside the supported set.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string { return "Unknown action: " + e.Name }
