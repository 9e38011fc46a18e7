package browser

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser/cdp"
	"github.com/xkilldash9x/foxbridge/internal/browser/pw"
	"github.com/xkilldash9x/foxbridge/internal/config"
)

// New returns the launcher for the configured engine.
func New(cfg config.Interface, logger *zap.Logger) (Launcher, error) {
	switch engine := cfg.Browser().Engine; engine {
	case config.EngineCDP, "":
		l := cdp.NewLauncher(cfg, logger)
		return LauncherFunc(func(ctx context.Context, opts schemas.SessionOptions) (Session, error) {
			s, err := l.Launch(ctx, opts)
			if err != nil {
				return nil, err
			}
			return session[*cdp.Page]{inner: s}, nil
		}), nil
	case config.EnginePlaywright:
		l := pw.NewLauncher(cfg, logger)
		return LauncherFunc(func(ctx context.Context, opts schemas.SessionOptions) (Session, error) {
			s, err := l.Launch(ctx, opts)
			if err != nil {
				return nil, err
			}
			return session[*pw.Page]{inner: s}, nil
		}), nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q", engine)
	}
}
