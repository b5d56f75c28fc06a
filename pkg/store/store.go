// Package store persists experiment runs: run metadata, per-generation
// summaries, and population checkpoints. Two backends are provided, an
// in-memory store for tests and short-lived experiments and a SQLite
// store for runs that must survive the process.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/metrics"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// RunStatus tracks where a run is in its lifecycle.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is the persistent record of one experiment.
type Run struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Seed           uint64    `json:"seed"`
	PopulationSize int       `json:"population_size"`
	Status         RunStatus `json:"status"`
	// Config holds the raw YAML the run was launched with, for later
	// inspection. Empty when the run was configured in code.
	Config     string    `json:"config,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// NewRun creates a running Run with a fresh ID and the current time as
// its start.
func NewRun(name string, seed uint64, populationSize int) Run {
	return Run{
		ID:             uuid.New().String(),
		Name:           name,
		Seed:           seed,
		PopulationSize: populationSize,
		Status:         StatusRunning,
		StartedAt:      time.Now().UTC(),
	}
}

// Checkpoint is a restorable snapshot of a run at one generation: the
// population and the RNG key to resume from. Saving the key alongside
// the population is what makes a resumed run bit-identical to an
// uninterrupted one.
type Checkpoint struct {
	RunID      string
	Generation int
	Key        rng.Key
	Population []core.Member
}

// RunStore persists runs, their per-generation summaries, and their
// checkpoints. Implementations are safe for concurrent use.
//
// Semantics shared by all backends: runs are keyed by ID and listed in
// start-time order; recording a generation or checkpoint that already
// exists overwrites the previous record; operations on unknown runs
// fail with a ResourceNotFound error; checkpoints round-trip through
// the JSON codec, so loaded populations never alias saved ones.
type RunStore interface {
	// CreateRun registers a new run. The run's ID must be non-empty and
	// not already in use.
	CreateRun(ctx context.Context, run Run) error

	// GetRun returns the run with the given ID.
	GetRun(ctx context.Context, runID string) (Run, error)

	// ListRuns returns all runs ordered by start time.
	ListRuns(ctx context.Context) ([]Run, error)

	// FinishRun marks a run finished with the given status and stamps
	// its finish time.
	FinishRun(ctx context.Context, runID string, status RunStatus) error

	// AppendGeneration records the summary for one generation of a run.
	AppendGeneration(ctx context.Context, runID string, summary metrics.Summary) error

	// Generations returns a run's summaries ordered by generation.
	Generations(ctx context.Context, runID string) ([]metrics.Summary, error)

	// SaveCheckpoint persists a population snapshot for a generation.
	SaveCheckpoint(ctx context.Context, checkpoint Checkpoint) error

	// LatestCheckpoint returns the checkpoint with the highest
	// generation for a run.
	LatestCheckpoint(ctx context.Context, runID string) (Checkpoint, error)

	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Options selects and tunes a run store backend.
type Options struct {
	// Backend is "memory" or "sqlite". Empty defaults to memory.
	Backend string

	// SQLite configures the sqlite backend; ignored otherwise.
	SQLite SQLiteOptions
}

// SQLiteOptions holds SQLite-specific settings.
type SQLiteOptions struct {
	// Path to the database file. Parent directories are created.
	Path string

	// EnableWAL turns on write-ahead logging for better concurrent
	// performance.
	EnableWAL bool

	// MaxConnections caps the connection pool (0 = default).
	MaxConnections int
}

// Open creates a store for the configured backend.
func Open(opts Options) (RunStore, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return NewSQLiteStore(opts.SQLite)
	default:
		return nil, errors.Newf(errors.InvalidConfig, "unknown store backend %q", opts.Backend)
	}
}
