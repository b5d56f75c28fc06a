package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/metrics"
)

// MemoryStore keeps runs in process memory. Checkpoints still pass
// through the JSON codec, so the memory and SQLite backends accept
// exactly the same populations and hand back detached copies.
type MemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]Run
	generations map[string][]metrics.Summary
	checkpoints map[string]map[int][]byte
}

// NewMemoryStore creates an empty in-memory run store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:        make(map[string]Run),
		generations: make(map[string][]metrics.Summary),
		checkpoints: make(map[string]map[int][]byte),
	}
}

func (s *MemoryStore) CreateRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New(errors.InvalidInput, "run ID must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return errors.Newf(errors.InvalidInput, "run %q already exists", run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, runID string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return Run{}, errors.Newf(errors.ResourceNotFound, "run %q not found", runID)
	}
	return run, nil
}

func (s *MemoryStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.Before(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) FinishRun(ctx context.Context, runID string, status RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return errors.Newf(errors.ResourceNotFound, "run %q not found", runID)
	}
	run.Status = status
	run.FinishedAt = time.Now().UTC()
	s.runs[runID] = run
	return nil
}

func (s *MemoryStore) AppendGeneration(ctx context.Context, runID string, summary metrics.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return errors.Newf(errors.ResourceNotFound, "run %q not found", runID)
	}

	records := s.generations[runID]
	for i, record := range records {
		if record.Generation == summary.Generation {
			records[i] = summary
			return nil
		}
	}
	s.generations[runID] = append(records, summary)
	return nil
}

func (s *MemoryStore) Generations(ctx context.Context, runID string) ([]metrics.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.runs[runID]; !ok {
		return nil, errors.Newf(errors.ResourceNotFound, "run %q not found", runID)
	}

	out := make([]metrics.Summary, len(s.generations[runID]))
	copy(out, s.generations[runID])
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func (s *MemoryStore) SaveCheckpoint(ctx context.Context, checkpoint Checkpoint) error {
	data, err := EncodeCheckpoint(checkpoint)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[checkpoint.RunID]; !ok {
		return errors.Newf(errors.ResourceNotFound, "run %q not found", checkpoint.RunID)
	}

	byGeneration := s.checkpoints[checkpoint.RunID]
	if byGeneration == nil {
		byGeneration = make(map[int][]byte)
		s.checkpoints[checkpoint.RunID] = byGeneration
	}
	byGeneration[checkpoint.Generation] = data
	return nil
}

func (s *MemoryStore) LatestCheckpoint(ctx context.Context, runID string) (Checkpoint, error) {
	s.mu.RLock()
	var data []byte
	latest := -1
	for generation, payload := range s.checkpoints[runID] {
		if generation > latest {
			latest = generation
			data = payload
		}
	}
	s.mu.RUnlock()

	if latest < 0 {
		return Checkpoint{}, errors.Newf(errors.ResourceNotFound, "no checkpoints for run %q", runID)
	}
	return DecodeCheckpoint(data)
}

func (s *MemoryStore) Close() error {
	return nil
}
