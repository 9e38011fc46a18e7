// internal/task/decode.go
package task

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

// strict matches parameter names exactly. The parameter bag is shared by
// the action and the session options, so unknown keys are ignored.
var strict = json.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// Task is a decoded, validated task descriptor.
type Task struct {
	// ID correlates the log lines of one task.
	ID      string
	Action  schemas.Action
	Params  schemas.Params
	Session schemas.SessionOptions
}

type descriptor struct {
	Action     json.RawMessage `json:"action"`
	Parameters json.RawMessage `json:"parameters"`
}

// Decode parses a task descriptor. Invalid JSON yields *InvalidJSONError.
// An unknown action yields *schemas.UnknownActionError and missing or
// malformed parameters yield *schemas.ParameterError, so a task that decodes
// can be executed without further checks.
func Decode(data []byte) (*Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &InvalidJSONError{Err: errors.New("empty input")}
	}
	var probe interface{}
	if err := strict.Unmarshal(data, &probe); err != nil {
		return nil, &InvalidJSONError{Err: err}
	}

	var d descriptor
	if isObject(data) {
		if err := strict.Unmarshal(data, &d); err != nil {
			return nil, &InvalidJSONError{Err: err}
		}
	}

	action := actionName(d.Action)
	params, ok := schemas.NewParams(action)
	if !ok {
		return nil, &schemas.UnknownActionError{Name: string(action)}
	}

	bag := []byte("{}")
	if isObject(d.Parameters) {
		bag = d.Parameters
	}

	freshParams := func() interface{} {
		p, _ := schemas.NewParams(action)
		return p
	}
	if err := decodeInto(bag, params, freshParams); err != nil {
		return nil, err
	}
	if def, ok := params.(schemas.Defaulter); ok {
		def.ApplyDefaults()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var session schemas.SessionOptions
	if err := decodeInto(bag, &session, func() interface{} { return &schemas.SessionOptions{} }); err != nil {
		return nil, err
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	return &Task{
		ID:      uuid.NewString(),
		Action:  action,
		Params:  params,
		Session: session,
	}, nil
}

func isObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// actionName reads the action field. A missing or null action has an empty
// name; a non-string one is named by its JSON text.
func actionName(raw json.RawMessage) schemas.Action {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := strict.Unmarshal(raw, &s); err == nil {
		return schemas.Action(s)
	}
	return schemas.Action(raw)
}

// decodeInto unmarshals the bag into target. On failure the keys are
// retried one at a time against fresh targets so the error can name the
// parameter at fault.
func decodeInto(bag []byte, target interface{}, fresh func() interface{}) error {
	err := strict.Unmarshal(bag, target)
	if err == nil {
		return nil
	}

	var fields map[string]json.RawMessage
	if strict.Unmarshal(bag, &fields) != nil {
		return &schemas.ParameterError{Message: fmt.Sprintf("invalid parameters: %v", err)}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		single, mErr := strict.Marshal(map[string]json.RawMessage{k: fields[k]})
		if mErr != nil {
			continue
		}
		if kErr := strict.Unmarshal(single, fresh()); kErr != nil {
			return &schemas.ParameterError{
				Names:   []string{k},
				Message: fmt.Sprintf("invalid parameter %s: %v", k, kErr),
			}
		}
	}
	return &schemas.ParameterError{Message: fmt.Sprintf("invalid parameters: %v", err)}
}
