package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-port/internal/application"
	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
)

// Service implements use-cases untuk CheckRun.
// Repo and Artifacts are optional; when nil the service keeps no state
// beyond the single invocation.
type Service struct {
	Runner    domain.Runner
	Repo      domain.Repository
	Artifacts domain.ArtifactStore
	Clock     application.Clock
}

//
// ==== USE CASES ====
//

// Command untuk trigger check
type RunCheckCommand struct {
	Path string
}

type RunCheckResult struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ExitCode    int    `json:"exit_code"`
	Output      string `json:"output,omitempty"`
	ArtifactURL string `json:"artifact_url,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// RunCheckUntilDone → jalanin check dengan context.Background()
// cocok dipanggil dari goroutine di router supaya gak kena context canceled
func (s *Service) RunCheckUntilDone(cmd RunCheckCommand) (RunCheckResult, error) {
	return s.RunCheck(context.Background(), cmd)
}

// RunCheck validates the target, runs the isolated check once and branches
// on the exit status: Output carries the full captured transcript verbatim
// on failure and is empty on success, whatever the check printed. The
// capture sink is deleted on every path that created one.
func (s *Service) RunCheck(ctx context.Context, cmd RunCheckCommand) (RunCheckResult, error) {
	target, err := resolveTarget(cmd.Path)
	if err != nil {
		return RunCheckResult{}, err
	}

	now := s.Clock.Now()
	id := uuid.New().String()

	// Create an initial journal row so we always have an ID to reference
	if s.Repo != nil {
		initial := &domain.CheckRun{
			ID:          domain.CheckID(id),
			TriggeredAt: now,
			Path:        target,
			Status:      domain.StatusRunning,
		}
		if err := s.Repo.Save(ctx, initial); err != nil {
			return RunCheckResult{ID: id, Status: string(domain.StatusError)}, err
		}
	}

	// jalankan runner sekali, tanpa retry
	res, runErr := s.Runner.Run(ctx, domain.RunRequest{Path: target})

	exitCode := res.ExitCode
	if runErr != nil && exitCode == 0 {
		// launch failure without an exit status from the container
		exitCode = 1
	}

	var output string
	if exitCode != 0 && res.LogPath != "" {
		if data, rerr := os.ReadFile(res.LogPath); rerr == nil {
			output = string(data)
		}
	}
	if exitCode != 0 && output == "" && runErr != nil {
		// nothing was captured; surface the launch error itself
		output = runErr.Error() + "\n"
	}

	// archive on failure, otherwise just drop the sink
	artifactURL := ""
	if res.LogPath != "" {
		if s.Artifacts != nil && exitCode != 0 {
			key := fmt.Sprintf("checks/%s/%s", id, filepath.Base(res.LogPath))
			url, uerr := s.Artifacts.UploadAndCleanup(ctx, res.LogPath, key)
			if uerr != nil {
				// Clean up the sink even if upload fails
				os.Remove(res.LogPath)
			} else {
				artifactURL = url
			}
		} else {
			os.Remove(res.LogPath)
		}
	}

	status := statusFromExit(exitCode)
	if runErr != nil {
		status = domain.StatusError
	}

	if s.Repo != nil {
		final := &domain.CheckRun{
			ID:          domain.CheckID(id),
			TriggeredAt: now,
			Path:        target,
			Status:      status,
			ExitCode:    exitCode,
			ArtifactURL: artifactURL,
			DurationMS:  res.DurationMS,
		}
		if err := s.Repo.Save(ctx, final); err != nil {
			return RunCheckResult{ID: id, Status: string(status), ExitCode: exitCode, Output: output}, err
		}
	}

	return RunCheckResult{
		ID:          id,
		Status:      string(status),
		ExitCode:    exitCode,
		Output:      output,
		ArtifactURL: artifactURL,
		DurationMS:  res.DurationMS,
	}, nil
}

// Latest ambil N check terakhir dari journal
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.CheckRun, error) {
	if s.Repo == nil {
		return nil, fmt.Errorf("check journal is not configured")
	}
	return s.Repo.Latest(ctx, limit)
}

// Get ambil 1 check by id
func (s *Service) Get(ctx context.Context, id domain.CheckID) (*domain.CheckRun, error) {
	if s.Repo == nil {
		return nil, fmt.Errorf("check journal is not configured")
	}
	return s.Repo.Get(ctx, id)
}

// Summary rekap hasil check N hari terakhir
func (s *Service) Summary(ctx context.Context, sinceDays int) (map[string]any, error) {
	if s.Repo == nil {
		return nil, fmt.Errorf("check journal is not configured")
	}
	total, passed, failed, err := s.Repo.Summary(ctx, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_checks": total,
		"passed":       passed,
		"failed":       failed,
	}, nil
}

// resolveTarget canonicalizes the target path (absolute, symlinks resolved)
// and requires it to be an existing directory.
func resolveTarget(path string) (string, error) {
	if path == "" {
		return "", domain.ErrInvalidTarget
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidTarget, path)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidTarget, path)
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidTarget, path)
	}
	return canonical, nil
}

// helper
func statusFromExit(code int) domain.Status {
	if code == 0 {
		return domain.StatusPassed
	}
	return domain.StatusFailed
}
