package display_test

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/BioGeek/qdax-go/cmd/qdax-cli/internal/display"
	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/metrics"
	"github.com/BioGeek/qdax-go/pkg/store"
)

func init() {
	// Deterministic output regardless of the terminal running the tests
	color.NoColor = true
}

func TestFormatRunsTable(t *testing.T) {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	runs := []store.Run{
		{ID: "run-a", Name: "rastrigin-sweep", Status: store.StatusCompleted, Seed: 42, PopulationSize: 8, StartedAt: started},
		{ID: "run-b", Name: "a-name-way-too-long-for-the-column", Status: store.StatusFailed, Seed: 7, PopulationSize: 16, StartedAt: started.Add(time.Hour)},
	}

	out := display.FormatRunsTable(runs)

	assert.Contains(t, out, "Stored runs (2)")
	assert.Contains(t, out, "run-a")
	assert.Contains(t, out, "rastrigin-sweep")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "a-name-way-too-long-for-the-column")
}

func TestFormatRunHeader(t *testing.T) {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	run := store.Run{
		ID:             "run-c",
		Name:           "sphere-check",
		Status:         store.StatusCompleted,
		Seed:           3,
		PopulationSize: 4,
		StartedAt:      started,
		FinishedAt:     started.Add(90 * time.Second),
	}

	out := display.FormatRunHeader(run)

	assert.Contains(t, out, "sphere-check")
	assert.Contains(t, out, "Run ID: run-c")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "took 1m30s")
}

func TestFormatGenerationTable(t *testing.T) {
	summaries := []metrics.Summary{
		{Generation: 0, Best: 1.5, BestIndex: 2, Mean: 0.75, Median: 0.5, StdDev: 0.25, NumReplaced: 1},
	}

	out := display.FormatGenerationTable(summaries)

	assert.Contains(t, out, "GEN")
	assert.Contains(t, out, "1.5000")
	assert.Contains(t, out, "0.2500")
}

func TestFormatPopulationDetails(t *testing.T) {
	a := core.NewAgentState("a", []float64{1}, core.Hyperparams{"learning_rate": 0.1}, 0)
	a.EnvSteps = 1500000
	b := core.NewAgentState("b", []float64{2}, core.Hyperparams{"learning_rate": 0.2}, 0)
	b.EnvSteps = 500000

	out := display.FormatPopulationDetails(store.Checkpoint{
		Generation: 9,
		Population: []core.Member{a, b},
	})

	assert.Contains(t, out, "generation 9")
	assert.Contains(t, out, "2,000,000 env steps")
	assert.Contains(t, out, "learning_rate")
	assert.Contains(t, out, "min=0.1")
}
