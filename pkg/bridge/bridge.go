// Package bridge runs foxbridge tasks from Go by spawning the binary and
// reading its result envelope.
package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

// TaskIDEnv carries the caller's task ID into the child so both sides log
// under the same ID.
const TaskIDEnv = "FOXBRIDGE_TASK_ID"

// Descriptor is one task: an action and its parameters.
type Descriptor struct {
	Action     schemas.Action         `json:"action"`
	Parameters map[string]interface{} `json:"parameters"`
}

// Runner spawns one foxbridge process per task.
type Runner struct {
	// Binary is the foxbridge executable, "foxbridge" on PATH by default.
	Binary string
	// BaseConfig holds session defaults such as headless or os. Task
	// parameters win over them.
	BaseConfig map[string]interface{}
	// Args are passed before the task, e.g. "--config", "foxbridge.yaml".
	Args   []string
	Logger *zap.Logger
}

// Run executes d and returns its envelope. Process failures are reported
// as failure envelopes too, so callers only ever inspect one shape.
func (r *Runner) Run(ctx context.Context, d Descriptor) schemas.Envelope {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	taskID := uuid.NewString()
	logger = logger.With(zap.String("task_id", taskID), zap.String("action", string(d.Action)))

	payload, err := json.Marshal(Descriptor{Action: d.Action, Parameters: r.merge(d.Parameters)})
	if err != nil {
		return schemas.Fail(fmt.Sprintf("Failed to encode task: %v", err))
	}

	binary := r.Binary
	if binary == "" {
		binary = "foxbridge"
	}
	args := append(append([]string{}, r.Args...), string(payload))
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = append(os.Environ(), TaskIDEnv+"="+taskID)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return schemas.Fail(fmt.Sprintf("Failed to spawn foxbridge: %v", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return schemas.Fail(fmt.Sprintf("Failed to spawn foxbridge: %v", err))
	}

	logger.Debug("Spawning foxbridge", zap.String("binary", binary))
	if err := cmd.Start(); err != nil {
		return schemas.Fail(fmt.Sprintf("Failed to spawn foxbridge: %v", err))
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})
	// Pipes must be drained before Wait closes them.
	pumpErr := g.Wait()
	waitErr := cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case errors.As(waitErr, &exitErr):
		detail := strings.TrimSpace(errBuf.String())
		if detail == "" {
			detail = strings.TrimSpace(outBuf.String())
		}
		logger.Warn("foxbridge exited abnormally", zap.Int("code", exitErr.ExitCode()), zap.String("stderr", detail))
		return schemas.Fail(fmt.Sprintf("foxbridge exited with code %d: %s", exitErr.ExitCode(), detail))
	case waitErr != nil:
		return schemas.Fail(fmt.Sprintf("Failed to spawn foxbridge: %v", waitErr))
	case pumpErr != nil:
		return schemas.Fail(fmt.Sprintf("Failed to parse foxbridge output: %v", pumpErr))
	}

	var env schemas.Envelope
	if err := json.Unmarshal(bytes.TrimSpace(outBuf.Bytes()), &env); err != nil {
		return schemas.Fail(fmt.Sprintf("Failed to parse foxbridge output: %v", err))
	}
	logger.Debug("foxbridge finished", zap.Bool("success", env.Success))
	return env
}

// merge layers task parameters over the base configuration.
func (r *Runner) merge(params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(r.BaseConfig)+len(params))
	for k, v := range r.BaseConfig {
		out[k] = v
	}
	for k, v := range params {
		out[k] = v
	}
	return out
}
