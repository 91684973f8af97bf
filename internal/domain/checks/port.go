package checks

import "context"

// Repository port (interface untuk persistence of the check journal)
type Repository interface {
	Save(ctx context.Context, run *CheckRun) error
	Get(ctx context.Context, id CheckID) (*CheckRun, error)
	Latest(ctx context.Context, limit int) ([]*CheckRun, error)
	Summary(ctx context.Context, sinceDays int) (total, passed, failed int, err error)
}

// Runner port (interface untuk isolated execution of the check command)
type Runner interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// ArtifactStore port (interface untuk penyimpanan transcript artifacts)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
