package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-port/internal/config"
	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
)

// exitError carries an exact process exit code through cobra. The check
// command uses it to mirror the containerized check's exit status without
// printing anything beyond the captured diagnostics.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var configFlag string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "automaton-port",
		Short:         "Port projects to Rust with a sandboxed compile gate",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// secrets file for the AI credentials, optional
			_ = godotenv.Load()
		},
	}

	root.PersistentFlags().StringVar(&configFlag, "config", "", "path to config.yaml")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newServeCmd())

	return root
}

// loadConfig resolves the config path from flag, CONFIG_PATH, or the
// default file; a missing default file falls back to built-in defaults.
func loadConfig() (*config.Config, error) {
	path := configFlag
	explicit := path != ""
	if path == "" {
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
			explicit = true
		} else {
			path = "config.yaml"
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("config load error: %w", err)
	}
	return cfg, nil
}

// Execute runs the CLI and maps errors to process exit codes:
// 0 only on full success, 2 for an invalid target, otherwise the check's
// own exit code (or 1).
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintln(os.Stderr, "automaton-port:", err)
		if errors.Is(err, domain.ErrInvalidTarget) {
			return 2
		}
		return 1
	}
	return 0
}
