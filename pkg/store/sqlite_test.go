package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/metrics"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(SQLiteOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.InvalidConfig, errors.CodeOf(err))
}

func TestSQLiteStoreCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "runs.db")
	s, err := NewSQLiteStore(SQLiteOptions{Path: path})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateRun(context.Background(), NewRun("nested", 1, 2)))
}

func TestSQLiteStoreWALMode(t *testing.T) {
	s, err := NewSQLiteStore(SQLiteOptions{
		Path:      filepath.Join(t.TempDir(), "runs.db"),
		EnableWAL: true,
	})
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(SQLiteOptions{Path: path, EnableWAL: true})
	require.NoError(t, err)

	run := NewRun("durable", 11, 2)
	require.NoError(t, s.CreateRun(ctx, run))
	require.NoError(t, s.AppendGeneration(ctx, run.ID, metrics.Summary{Generation: 0, PopulationSize: 2, Best: 3.5}))
	require.NoError(t, s.SaveCheckpoint(ctx, Checkpoint{
		RunID:      run.ID,
		Generation: 0,
		Key:        rng.NewKey(11),
		Population: storeTestPopulation(2),
	}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(SQLiteOptions{Path: path, EnableWAL: true})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "durable", got.Name)
	assert.Equal(t, uint64(11), got.Seed)

	summaries, err := reopened.Generations(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3.5, summaries[0].Best)

	checkpoint, err := reopened.LatestCheckpoint(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, checkpoint.Population, 2)
	assert.Equal(t, "agent-0", checkpoint.Population[0].(*core.AgentState).AgentID)
	assert.True(t, rng.NewKey(11).Equal(checkpoint.Key))
}
