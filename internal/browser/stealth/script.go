package stealth

import (
	_ "embed"
	"fmt"

	json "github.com/json-iterator/go"
)

//go:embed evasions.js
var evasionsScript string

// Script renders the init script that installs persona on every new document.
func Script(p Persona) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("stealth: marshal persona: %w", err)
	}
	return fmt.Sprintf("const FOXBRIDGE_PERSONA = %s;\n%s", data, evasionsScript), nil
}
