package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save insert/update CheckRun record
func (r *RunRepository) Save(ctx context.Context, run *domain.CheckRun) error {
	const q = `
INSERT INTO check_runs
(id, triggered_at, target_path, image, status, exit_code, artifact_url, duration_ms)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 exit_code=VALUES(exit_code),
 artifact_url=VALUES(artifact_url),
 duration_ms=VALUES(duration_ms);
`
	// Ensure non-nullable string fields have safe defaults
	status := stringOrDash(string(run.Status))
	path := stringOrDash(run.Path)
	triggered := run.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		run.ID, triggered, path, run.Image, status,
		run.ExitCode, run.ArtifactURL, run.DurationMS,
	)
	return err
}

// Get by ID
func (r *RunRepository) Get(ctx context.Context, id domain.CheckID) (*domain.CheckRun, error) {
	const q = `
SELECT id, triggered_at, target_path, image, status, exit_code, artifact_url, duration_ms
FROM check_runs
WHERE id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id)

	var run domain.CheckRun
	if err := row.Scan(
		&run.ID, &run.TriggeredAt, &run.Path, &run.Image, &run.Status,
		&run.ExitCode, &run.ArtifactURL, &run.DurationMS,
	); err != nil {
		return nil, err
	}
	return &run, nil
}

// Latest check runs
func (r *RunRepository) Latest(ctx context.Context, limit int) ([]*domain.CheckRun, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, triggered_at, target_path, image, status, exit_code, artifact_url, duration_ms
FROM check_runs
ORDER BY triggered_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.CheckRun
	for rows.Next() {
		var run domain.CheckRun
		if err := rows.Scan(
			&run.ID, &run.TriggeredAt, &run.Path, &run.Image, &run.Status,
			&run.ExitCode, &run.ArtifactURL, &run.DurationMS,
		); err != nil {
			return nil, err
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}

// Summary rekap N hari terakhir
func (r *RunRepository) Summary(ctx context.Context, sinceDays int) (int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT
 COUNT(*),
 COALESCE(SUM(status = 'passed'), 0),
 COALESCE(SUM(status = 'failed'), 0)
FROM check_runs
WHERE triggered_at >= NOW() - INTERVAL ? DAY;
`
	var total, passed, failed int
	if err := r.db.QueryRowContext(ctx, q, sinceDays).Scan(&total, &passed, &failed); err != nil {
		return 0, 0, 0, err
	}
	return total, passed, failed, nil
}
