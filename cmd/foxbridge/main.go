// File: cmd/foxbridge/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/foxbridge/cmd"
)

// osExit allows mocking os.Exit in tests.
var osExit = os.Exit

func main() {
	// SIGINT and SIGTERM cancel the task; the browser session is still
	// closed on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := exitCode(cmd.Execute(ctx))
	stop()
	osExit(code)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cmd.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
