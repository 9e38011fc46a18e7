package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/foxbridge/cmd"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(&cmd.ExitError{Code: 1, Err: errors.New("Invalid JSON: x")}))
	assert.Equal(t, 7, exitCode(&cmd.ExitError{Code: 7, Err: errors.New("x")}))
	assert.Equal(t, 1, exitCode(errors.New("error reading config file")))
}
