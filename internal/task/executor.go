// internal/task/executor.go
package task

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser"
	"github.com/xkilldash9x/foxbridge/internal/config"
)

// handler performs one action on a ready page and returns its result map.
type handler func(ctx context.Context, page browser.Page, params schemas.Params) (map[string]interface{}, error)

// bind adapts a handler written against a concrete parameter type.
func bind[P schemas.Params](fn func(ctx context.Context, page browser.Page, p P) (map[string]interface{}, error)) handler {
	return func(ctx context.Context, page browser.Page, params schemas.Params) (map[string]interface{}, error) {
		p, ok := params.(P)
		if !ok {
			return nil, fmt.Errorf("unexpected parameters %T", params)
		}
		return fn(ctx, page, p)
	}
}

// Executor runs one decoded task in its own browser session.
type Executor struct {
	launcher browser.Launcher
	cfg      config.Interface
	logger   *zap.Logger
	handlers map[schemas.Action]handler
}

func NewExecutor(launcher browser.Launcher, cfg config.Interface, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		launcher: launcher,
		cfg:      cfg,
		logger:   logger.Named("executor"),
		handlers: make(map[schemas.Action]handler),
	}
	e.registerHandlers()
	return e
}

// Execute performs the task and reports its outcome. Every failure,
// including a panic inside a handler, becomes a failure envelope.
func (e *Executor) Execute(ctx context.Context, t *Task) (env schemas.Envelope) {
	logger := e.logger.With(zap.String("task_id", t.ID), zap.String("action", string(t.Action)))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Handler panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			env = schemas.Fail(fmt.Sprintf("internal error: %v", r))
		}
	}()

	h, ok := e.handlers[t.Action]
	if !ok {
		return schemas.FailErr(&schemas.UnknownActionError{Name: string(t.Action)})
	}

	if timeout := e.cfg.Task().Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := e.run(ctx, t, h, logger)
	if err != nil {
		logger.Warn("Task failed", zap.Error(err))
		return schemas.FailErr(err)
	}
	logger.Info("Task completed")
	return schemas.Succeed(result)
}

func (e *Executor) run(ctx context.Context, t *Task, h handler, logger *zap.Logger) (map[string]interface{}, error) {
	logger.Debug("Launching browser session")
	session, err := e.launcher.Launch(ctx, t.Session)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("Failed to close browser session", zap.Error(cerr))
		}
	}()

	page, err := session.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if hcfg := e.cfg.Browser().Humanoid; t.Session.Humanize.Enabled || hcfg.Enabled {
		page = browser.Humanize(page, hcfg, t.Session.Humanize.MaxDuration, logger)
	}

	if nav, ok := t.Params.(schemas.Navigator); ok {
		if target := nav.Target(); target.URL != "" {
			logger.Debug("Navigating before action", zap.String("url", target.URL))
			if err := page.Goto(ctx, target.URL, target.WaitUntil); err != nil {
				return nil, err
			}
		}
	}

	return h(ctx, page, t.Params)
}
