package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/logging"
	"github.com/BioGeek/qdax-go/pkg/metrics"
)

// SQLiteStore persists runs to a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at opts.Path, creating the file and
// its parent directories if needed, and prepares the schema.
func NewSQLiteStore(opts SQLiteOptions) (*SQLiteStore, error) {
	if opts.Path == "" {
		return nil, errors.New(errors.InvalidConfig, "sqlite store requires a database path")
	}
	if dir := filepath.Dir(opts.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to create store directory")
		}
	}

	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to open sqlite database")
	}

	// Set connection pool settings
	if opts.MaxConnections > 0 {
		db.SetMaxOpenConns(opts.MaxConnections)
	} else {
		db.SetMaxOpenConns(10)
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// Enable WAL mode for better concurrent performance
	if opts.EnableWAL {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, errors.Unknown, "failed to enable WAL mode")
		}
	}

	// Set other pragmas for performance
	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Log warning but don't fail
			logging.GetLogger().Warn(context.Background(), "failed to set pragma %s: %v", pragma, err)
		}
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		population_size INTEGER NOT NULL,
		status TEXT NOT NULL,
		config TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS generations (
		run_id TEXT NOT NULL,
		generation INTEGER NOT NULL,
		population_size INTEGER NOT NULL,
		best REAL NOT NULL,
		best_index INTEGER NOT NULL,
		worst REAL NOT NULL,
		worst_index INTEGER NOT NULL,
		mean REAL NOT NULL,
		median REAL NOT NULL,
		std_dev REAL NOT NULL,
		num_replaced INTEGER NOT NULL,
		PRIMARY KEY (run_id, generation)
	);

	CREATE TABLE IF NOT EXISTS checkpoints (
		run_id TEXT NOT NULL,
		generation INTEGER NOT NULL,
		payload BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (run_id, generation)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to initialize store schema")
	}
	return nil
}

const runColumns = `id, name, seed, population_size, status, config, started_at, finished_at`

func (s *SQLiteStore) CreateRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New(errors.InvalidInput, "run ID must not be empty")
	}

	exists, err := s.runExists(ctx, run.ID)
	if err != nil {
		return err
	}
	if exists {
		return errors.Newf(errors.InvalidInput, "run %q already exists", run.ID)
	}

	var finished interface{}
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC()
	}

	// The driver rejects uint64 bind values above MaxInt64, so seeds
	// travel as their two's complement int64.
	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.Name, int64(run.Seed), run.PopulationSize,
		string(run.Status), run.Config, run.StartedAt.UTC(), finished)
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to insert run")
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, runID))
	if err == sql.ErrNoRows {
		return Run{}, errors.Newf(errors.ResourceNotFound, "run %q not found", runID)
	}
	if err != nil {
		return Run{}, errors.Wrap(err, errors.Unknown, "failed to query run")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to iterate runs")
	}
	return runs, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, status RunStatus) error {
	query := `UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, string(status), time.Now().UTC(), runID)
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to update run")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to update run")
	}
	if affected == 0 {
		return errors.Newf(errors.ResourceNotFound, "run %q not found", runID)
	}
	return nil
}

func (s *SQLiteStore) AppendGeneration(ctx context.Context, runID string, summary metrics.Summary) error {
	exists, err := s.runExists(ctx, runID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Newf(errors.ResourceNotFound, "run %q not found", runID)
	}

	query := `INSERT OR REPLACE INTO generations
		(run_id, generation, population_size, best, best_index, worst, worst_index, mean, median, std_dev, num_replaced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		runID, summary.Generation, summary.PopulationSize,
		summary.Best, summary.BestIndex, summary.Worst, summary.WorstIndex,
		summary.Mean, summary.Median, summary.StdDev, summary.NumReplaced)
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to insert generation record")
	}
	return nil
}

func (s *SQLiteStore) Generations(ctx context.Context, runID string) ([]metrics.Summary, error) {
	exists, err := s.runExists(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Newf(errors.ResourceNotFound, "run %q not found", runID)
	}

	query := `SELECT generation, population_size, best, best_index, worst, worst_index, mean, median, std_dev, num_replaced
		FROM generations WHERE run_id = ? ORDER BY generation`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to list generation records")
	}
	defer rows.Close()

	var summaries []metrics.Summary
	for rows.Next() {
		var summary metrics.Summary
		err := rows.Scan(&summary.Generation, &summary.PopulationSize,
			&summary.Best, &summary.BestIndex, &summary.Worst, &summary.WorstIndex,
			&summary.Mean, &summary.Median, &summary.StdDev, &summary.NumReplaced)
		if err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan generation record")
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to iterate generation records")
	}
	return summaries, nil
}

func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, checkpoint Checkpoint) error {
	data, err := EncodeCheckpoint(checkpoint)
	if err != nil {
		return err
	}

	exists, err := s.runExists(ctx, checkpoint.RunID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Newf(errors.ResourceNotFound, "run %q not found", checkpoint.RunID)
	}

	query := `INSERT OR REPLACE INTO checkpoints (run_id, generation, payload, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, checkpoint.RunID, checkpoint.Generation, data, time.Now().UTC()); err != nil {
		return errors.Wrap(err, errors.CheckpointFailed, "failed to save checkpoint")
	}
	return nil
}

func (s *SQLiteStore) LatestCheckpoint(ctx context.Context, runID string) (Checkpoint, error) {
	query := `SELECT payload FROM checkpoints WHERE run_id = ? ORDER BY generation DESC LIMIT 1`
	var data []byte
	err := s.db.QueryRowContext(ctx, query, runID).Scan(&data)
	if err == sql.ErrNoRows {
		return Checkpoint{}, errors.Newf(errors.ResourceNotFound, "no checkpoints for run %q", runID)
	}
	if err != nil {
		return Checkpoint{}, errors.Wrap(err, errors.CheckpointFailed, "failed to load checkpoint")
	}
	return DecodeCheckpoint(data)
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to close store database")
	}
	return nil
}

func (s *SQLiteStore) runExists(ctx context.Context, runID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.Unknown, "failed to query run")
	}
	return true, nil
}

// rowScanner lets scanRun work over both QueryRow and Query results.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run      Run
		seed     int64
		status   string
		finished sql.NullTime
	)
	err := row.Scan(&run.ID, &run.Name, &seed, &run.PopulationSize,
		&status, &run.Config, &run.StartedAt, &finished)
	if err != nil {
		return Run{}, err
	}
	run.Seed = uint64(seed)
	run.Status = RunStatus(status)
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return run, nil
}
