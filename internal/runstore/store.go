package runstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"genforge/internal/plan"
)

// ErrNotFound is returned when a run or artifact does not exist.
var ErrNotFound = errors.New("runstore: not found")

// RunStatus tracks a persisted generation run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is the persisted record of one generation run.
type Run struct {
	ID        string
	Status    RunStatus
	Plan      plan.GenerationPlan
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRunID mints a run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Store persists run records.
type Store interface {
	Save(ctx context.Context, run Run) error
	Get(ctx context.Context, id string) (Run, error)
	List(ctx context.Context) ([]Run, error)
	Close() error
}

// ArtifactStore persists the generated file contents of a run, keyed by
// run ID and repo-relative path.
type ArtifactStore interface {
	Put(ctx context.Context, runID, path string, content []byte) error
	Get(ctx context.Context, runID, path string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}
