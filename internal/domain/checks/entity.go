package checks

import (
	"time"
)

// ID tipe untuk CheckRun
type CheckID string

// Status enum
type Status string

const (
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

// Aggregate Root: CheckRun, one sandboxed compiler check against a project directory
type CheckRun struct {
	ID          CheckID   `json:"id"`
	TriggeredAt time.Time `json:"triggered_at"`
	Path        string    `json:"path"`
	Image       string    `json:"image,omitempty"`
	Status      Status    `json:"status"`
	ExitCode    int       `json:"exit_code"`
	ArtifactURL string    `json:"artifact_url,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
}
