package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-port/internal/application"
	appchecks "github.com/bryanwahyu/automaton-port/internal/application/checks"
	appconvert "github.com/bryanwahyu/automaton-port/internal/application/convert"
	"github.com/bryanwahyu/automaton-port/internal/domain/project"
	openaiclient "github.com/bryanwahyu/automaton-port/internal/infra/ai/openai"
	dockerrunner "github.com/bryanwahyu/automaton-port/internal/infra/executor/docker"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <source> <destination>",
		Short: "Convert a source project to Rust in the destination directory",
		Long: `Drives an LLM conversation that reads the source project and writes a
Rust implementation into the destination directory. Every round that
modified the destination is gated by a sandboxed cargo check; compiler
diagnostics are fed back to the model until the project compiles.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], args[1])
		},
	}
}

func runConvert(cmd *cobra.Command, sourcePath, destPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, path := range []string{sourcePath, destPath} {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("project directory does not exist: %s", path)
		}
	}

	apiKey := cfg.AI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no OpenAI API key: set ai.apiKey or OPENAI_API_KEY")
	}

	client := openaiclient.NewClient(apiKey, cfg.AI.Model)
	runner := dockerrunner.NewRunner(cfg.Check.Image, cfg.Check.Mount, cfg.Check.Command)
	checksSvc := &appchecks.Service{
		Runner: runner,
		Clock:  application.SystemClock{},
	}

	svc := appconvert.NewService(client,
		project.New(sourcePath),
		project.New(destPath),
		checksSvc,
		cmd.OutOrStdout(),
	)
	svc.MaxFixRounds = cfg.AI.MaxFixRounds

	return svc.Convert(cmd.Context())
}
