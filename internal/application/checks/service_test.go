package checks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-port/internal/application"
	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
)

// spyRunner records invocations and fakes the isolated execution by
// writing the scripted output to a real capture sink.
type spyRunner struct {
	calls    []domain.RunRequest
	exits    []int
	outputs  []string
	err      error
	lastLogs []string
}

func (r *spyRunner) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	n := len(r.calls)
	r.calls = append(r.calls, req)

	exit := 0
	if n < len(r.exits) {
		exit = r.exits[n]
	}
	output := ""
	if n < len(r.outputs) {
		output = r.outputs[n]
	}

	sink, err := os.CreateTemp("", "check-test-*.log")
	if err != nil {
		return domain.RunResult{}, err
	}
	sink.WriteString(output)
	sink.Close()
	r.lastLogs = append(r.lastLogs, sink.Name())

	return domain.RunResult{ExitCode: exit, LogPath: sink.Name(), DurationMS: 5}, r.err
}

type recordingRepo struct {
	saved []domain.CheckRun
}

func (r *recordingRepo) Save(ctx context.Context, run *domain.CheckRun) error {
	r.saved = append(r.saved, *run)
	return nil
}

func (r *recordingRepo) Get(ctx context.Context, id domain.CheckID) (*domain.CheckRun, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingRepo) Latest(ctx context.Context, limit int) ([]*domain.CheckRun, error) {
	return nil, nil
}

func (r *recordingRepo) Summary(ctx context.Context, sinceDays int) (int, int, int, error) {
	return 0, 0, 0, nil
}

type fakeStore struct {
	uploaded []string
}

func (s *fakeStore) Upload(ctx context.Context, localPath, key string) (string, error) {
	s.uploaded = append(s.uploaded, key)
	return "http://minio.local/checks/" + key, nil
}

func (s *fakeStore) UploadAndCleanup(ctx context.Context, localPath, key string) (string, error) {
	url, err := s.Upload(ctx, localPath, key)
	if err != nil {
		return "", err
	}
	os.Remove(localPath)
	return url, nil
}

func newService(runner *spyRunner) *Service {
	return &Service{Runner: runner, Clock: application.SystemClock{}}
}

func assertSinksRemoved(t *testing.T, runner *spyRunner) {
	t.Helper()
	for _, path := range runner.lastLogs {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "capture sink %s should be deleted", path)
	}
}

func TestRunCheck_InvalidTarget(t *testing.T) {
	runner := &spyRunner{}
	svc := newService(runner)

	cases := map[string]string{
		"empty":       "",
		"nonexistent": filepath.Join(t.TempDir(), "missing"),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: path})
			require.ErrorIs(t, err, domain.ErrInvalidTarget)
		})
	}

	// a plain file is not a valid target either
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: file})
	require.ErrorIs(t, err, domain.ErrInvalidTarget)

	assert.Empty(t, runner.calls, "no container invocation for invalid targets")
}

func TestRunCheck_CanonicalMountPath(t *testing.T) {
	runner := &spyRunner{exits: []int{0, 0, 0}}
	svc := newService(runner)

	base := t.TempDir()
	proj := filepath.Join(base, "proj")
	require.NoError(t, os.Mkdir(proj, 0o755))
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(proj, link))

	_, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: proj})
	require.NoError(t, err)
	_, err = svc.RunCheck(context.Background(), RunCheckCommand{Path: link})
	require.NoError(t, err)

	prevWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(base))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	_, err = svc.RunCheck(context.Background(), RunCheckCommand{Path: "proj"})
	require.NoError(t, err)

	canonical, err := filepath.EvalSymlinks(proj)
	require.NoError(t, err)

	require.Len(t, runner.calls, 3)
	for _, call := range runner.calls {
		assert.True(t, filepath.IsAbs(call.Path))
		assert.Equal(t, canonical, call.Path)
	}
	assertSinksRemoved(t, runner)
}

func TestRunCheck_FailureSurfacesOutputVerbatim(t *testing.T) {
	runner := &spyRunner{exits: []int{1}, outputs: []string{"error: type mismatch"}}
	svc := newService(runner)

	res, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, string(domain.StatusFailed), res.Status)
	assert.Equal(t, "error: type mismatch", res.Output, "no wrapping around captured diagnostics")
	assertSinksRemoved(t, runner)
}

func TestRunCheck_SuccessSuppressesOutput(t *testing.T) {
	runner := &spyRunner{exits: []int{0}, outputs: []string{"warning: unused import"}}
	svc := newService(runner)

	res, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, string(domain.StatusPassed), res.Status)
	assert.Empty(t, res.Output, "output is suppressed on success regardless of content")
	assertSinksRemoved(t, runner)
}

func TestRunCheck_LaunchFailure(t *testing.T) {
	runner := &spyRunner{err: errors.New(`run error: exec: "docker": executable file not found in $PATH`)}
	svc := newService(runner)

	res, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: t.TempDir()})
	require.NoError(t, err)

	assert.NotZero(t, res.ExitCode)
	assert.Equal(t, string(domain.StatusError), res.Status)
	assert.Contains(t, res.Output, "docker")
	assertSinksRemoved(t, runner)
}

func TestRunCheck_IdempotentSuccess(t *testing.T) {
	runner := &spyRunner{exits: []int{0, 0}}
	svc := newService(runner)
	proj := t.TempDir()

	for i := 0; i < 2; i++ {
		res, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: proj})
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Empty(t, res.Output)
	}
	assertSinksRemoved(t, runner)
}

func TestRunCheck_JournalRecordsRun(t *testing.T) {
	runner := &spyRunner{exits: []int{1}, outputs: []string{"error: oops"}}
	repo := &recordingRepo{}
	svc := newService(runner)
	svc.Repo = repo

	res, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: t.TempDir()})
	require.NoError(t, err)

	require.Len(t, repo.saved, 2)
	assert.Equal(t, domain.StatusRunning, repo.saved[0].Status)
	assert.Equal(t, domain.StatusFailed, repo.saved[1].Status)
	assert.Equal(t, 1, repo.saved[1].ExitCode)
	assert.Equal(t, repo.saved[0].ID, repo.saved[1].ID)
	assert.Equal(t, res.ID, string(repo.saved[1].ID))
}

func TestRunCheck_ArchivesFailureTranscript(t *testing.T) {
	runner := &spyRunner{exits: []int{1, 0}, outputs: []string{"error: oops", "all good"}}
	store := &fakeStore{}
	svc := newService(runner)
	svc.Artifacts = store

	res, err := svc.RunCheck(context.Background(), RunCheckCommand{Path: t.TempDir()})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ArtifactURL)
	require.Len(t, store.uploaded, 1)

	// passing runs are never archived
	res, err = svc.RunCheck(context.Background(), RunCheckCommand{Path: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, res.ArtifactURL)
	assert.Len(t, store.uploaded, 1)

	assertSinksRemoved(t, runner)
}
