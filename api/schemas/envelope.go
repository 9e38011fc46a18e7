package schemas

import (
	"errors"

	json "github.com/json-iterator/go"
)

// Envelope is the uniform outcome of one task. A successful envelope carries
// Result and never Error; a failed one carries Error and never Result.
type Envelope struct {
	Success bool
	Result  map[string]interface{}
	Error   string
}

// Succeed wraps an action result. A nil result becomes an empty object.
func Succeed(result map[string]interface{}) Envelope {
	if result == nil {
		result = map[string]interface{}{}
	}
	return Envelope{Success: true, Result: result}
}

// Fail builds a failure envelope carrying message verbatim.
func Fail(message string) Envelope {
	return Envelope{Error: message}
}

// FailErr builds a failure envelope from err's message.
func FailErr(err error) Envelope {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Fail(err.Error())
}

type successWire struct {
	Success bool                   `json:"success"`
	Result  map[string]interface{} `json:"result"`
}

type failureWire struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON emits exactly {"success":true,"result":{...}} or
// {"success":false,"error":"..."}.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Success {
		result := e.Result
		if result == nil {
			result = map[string]interface{}{}
		}
		return json.Marshal(successWire{Success: true, Result: result})
	}
	return json.Marshal(failureWire{Success: false, Error: e.Error})
}

// UnmarshalJSON reads either envelope shape. It rejects documents that lack
// the success flag.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var wire struct {
		Success *bool                  `json:"success"`
		Result  map[string]interface{} `json:"result"`
		Error   string                 `json:"error"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	if wire.Success == nil {
		return errors.New("envelope has no success field")
	}
	*e = Envelope{Success: *wire.Success, Error: wire.Error}
	if e.Success {
		e.Result = wire.Result
		if e.Result == nil {
			e.Result = map[string]interface{}{}
		}
	}
	return nil
}
