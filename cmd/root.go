// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/internal/config"
	"github.com/xkilldash9x/foxbridge/internal/observability"
)

// ExitError asks the process to exit with Code. Its output has already
// been written, so nothing else is printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

type cfgKey struct{}

// configFrom returns the configuration loaded by the root command.
func configFrom(ctx context.Context) config.Interface {
	if cfg, ok := ctx.Value(cfgKey{}).(config.Interface); ok {
		return cfg
	}
	return config.NewDefaultConfig()
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile string
		engine  string
	)

	rootCmd := &cobra.Command{
		Use:   "foxbridge '<task json>'",
		Short: "Run one browser action from a JSON task and print a JSON result.",
		Long: `foxbridge launches an ephemeral stealth browser, performs the single action
described by its argument and prints {"success":...} to stdout.

Example:
  foxbridge '{"action":"navigate","parameters":{"url":"https://example.com"}}'`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initializeConfig(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("engine") {
				cfg.SetBrowserEngine(engine)
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}
			}
			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting foxbridge",
				zap.String("version", Version),
				zap.String("engine", cfg.Browser().Engine))
			cmd.SetContext(context.WithValue(cmd.Context(), cfgKey{}, config.Interface(cfg)))
			return nil
		},
		RunE: runTask,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./foxbridge.yaml)")
	rootCmd.PersistentFlags().StringVar(&engine, "engine", "", "browser engine: cdp or playwright")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newActionsCmd(), newVersionCmd())
	return rootCmd
}

// initializeConfig reads the config file and FOXBRIDGE_* environment
// variables over the defaults.
func initializeConfig(cfgFile string) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("foxbridge")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FOXBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return config.NewConfigFromViper(v)
}

// Execute runs the root command. A non-nil error carries the exit code
// when it is an *ExitError.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	return NewRootCommand().ExecuteContext(ctx)
}
