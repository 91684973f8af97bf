package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
)

// Pinned toolchain defaults. The image must stay version-pinned so the
// check is reproducible across machines; overrides come from config only.
const (
	DefaultImage = "rust:1.83.0-slim"
	DefaultMount = "/project"
)

var DefaultCommand = []string{"cargo", "check"}

type Runner struct {
	Image   string
	Mount   string
	Command []string
}

func NewRunner(image, mount string, command []string) *Runner {
	if image == "" {
		image = DefaultImage
	}
	if mount == "" {
		mount = DefaultMount
	}
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &Runner{Image: image, Mount: mount, Command: command}
}

// Run executes the check command in a disposable container with the project
// bind-mounted read-write at the mount point, which is also the working
// directory. Combined stdout+stderr goes to a temporary capture sink, never
// to the inherited streams; the sink path is returned for the caller to
// read and delete.
func (r *Runner) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	start := time.Now()

	sink, err := os.CreateTemp("", "cargo-check-*.log")
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("create capture sink: %w", err)
	}

	cmd := exec.CommandContext(ctx, "docker", r.args(req.Path)...)
	cmd.Stdout = sink
	cmd.Stderr = sink

	runErr := cmd.Run()
	sink.Close()
	duration := time.Since(start).Milliseconds()

	result := domain.RunResult{
		LogPath:    sink.Name(),
		DurationMS: duration,
	}

	if runErr != nil {
		// ambil exit code
		if ee, ok := runErr.(*exec.ExitError); ok {
			result.ExitCode = ee.ExitCode()
		} else {
			// docker itself could not be started
			result.ExitCode = 1
			return result, fmt.Errorf("run error: %v", runErr)
		}
	}

	return result, nil
}

func (r *Runner) args(path string) []string {
	args := []string{
		"run", "--rm",
		"-v", fmt.Sprintf("%s:%s", path, r.Mount),
		"-w", r.Mount,
		r.Image,
	}
	return append(args, r.Command...)
}
