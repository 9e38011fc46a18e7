package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser"
	"github.com/xkilldash9x/foxbridge/internal/config"
	"github.com/xkilldash9x/foxbridge/internal/observability"
	"github.com/xkilldash9x/foxbridge/internal/task"
	"github.com/xkilldash9x/foxbridge/pkg/bridge"
)

// newLauncher is replaced in tests.
var newLauncher = func(cfg config.Interface, logger *zap.Logger) (browser.Launcher, error) {
	return browser.New(cfg, logger)
}

var errNoTask = errors.New("No task data provided")

func runTask(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		writeEnvelope(out, schemas.FailErr(errNoTask))
		return &ExitError{Code: 1, Err: errNoTask}
	}

	env, code := execute(cmd.Context(), configFrom(cmd.Context()), []byte(args[0]))
	writeEnvelope(out, env)
	if code != 0 {
		return &ExitError{Code: code, Err: errors.New(env.Error)}
	}
	return nil
}

// execute decodes and runs one task. Only malformed JSON yields a non-zero
// exit code; every other failure is reported in the envelope.
func execute(ctx context.Context, cfg config.Interface, raw []byte) (schemas.Envelope, int) {
	logger := observability.GetLogger()

	t, err := task.Decode(raw)
	if err != nil {
		var jsonErr *task.InvalidJSONError
		if errors.As(err, &jsonErr) {
			return schemas.FailErr(err), 1
		}
		logger.Debug("Task rejected", zap.Error(err))
		return schemas.FailErr(err), 0
	}
	if id := os.Getenv(bridge.TaskIDEnv); id != "" {
		t.ID = id
	}

	launcher, err := newLauncher(cfg, logger)
	if err != nil {
		return schemas.FailErr(err), 0
	}
	return task.NewExecutor(launcher, cfg, logger).Execute(ctx, t), 0
}

func writeEnvelope(w io.Writer, env schemas.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		b = []byte(fmt.Sprintf(`{"success":false,"error":%q}`, err.Error()))
	}
	fmt.Fprintln(w, string(b))
}
