package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-port/internal/application"
	appchecks "github.com/bryanwahyu/automaton-port/internal/application/checks"
	dockerrunner "github.com/bryanwahyu/automaton-port/internal/infra/executor/docker"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Run a sandboxed cargo check against a project directory",
		Long: `Validates that the project at <path> compiles by running the pinned
toolchain image's check command in a disposable container. Silent when the
check passes; on failure the full compiler output is written to stderr
verbatim and the check's exit status is mirrored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}
}

func runCheck(cmd *cobra.Command, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner := dockerrunner.NewRunner(cfg.Check.Image, cfg.Check.Mount, cfg.Check.Command)
	svc := &appchecks.Service{
		Runner: runner,
		Clock:  application.SystemClock{},
	}

	res, err := svc.RunCheck(cmd.Context(), appchecks.RunCheckCommand{Path: path})
	if err != nil {
		return err
	}

	if res.ExitCode != 0 {
		// verbatim, no reformatting or truncation
		os.Stderr.WriteString(res.Output)
		return &exitError{code: res.ExitCode}
	}
	return nil
}
