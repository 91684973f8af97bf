package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
)

type RunRepository struct{ db *sql.DB }

func NewRunRepository(db *sql.DB) *RunRepository { return &RunRepository{db: db} }

// Save insert/update CheckRun record
func (r *RunRepository) Save(ctx context.Context, run *domain.CheckRun) error {
	const q = `
INSERT INTO check_runs
(id, triggered_at, target_path, image, status, exit_code, artifact_url, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 exit_code = EXCLUDED.exit_code,
 artifact_url = EXCLUDED.artifact_url,
 duration_ms = EXCLUDED.duration_ms;`

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
WHERE id=$1 LIMIT 1;`

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
ORDER BY triggered_at DESC LIMIT $1;`

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
 COUNT(*) FILTER (WHERE status = 'passed'),
 COUNT(*) FILTER (WHERE status = 'failed')
FROM check_runs
WHERE triggered_at >= NOW() - make_interval(days => $1);`

	var total, passed, failed int
	if err := r.db.QueryRowContext(ctx, q, sinceDays).Scan(&total, &passed, &failed); err != nil {
		return 0, 0, 0, err
	}
	return total, passed, failed, nil
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
