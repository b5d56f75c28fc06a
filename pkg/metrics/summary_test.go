package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize(3, []float64{10, 30, 5, 20}, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Generation)
	assert.Equal(t, 4, s.PopulationSize)
	assert.Equal(t, 30.0, s.Best)
	assert.Equal(t, 1, s.BestIndex)
	assert.Equal(t, 5.0, s.Worst)
	assert.Equal(t, 2, s.WorstIndex)
	assert.InDelta(t, 16.25, s.Mean, 1e-12)
	assert.InDelta(t, 10.0, s.Median, 1e-12) // empirical 0.5 quantile of [5 10 20 30]
	assert.InDelta(t, math.Sqrt(368.75/3), s.StdDev, 1e-12)
	assert.Equal(t, 1, s.NumReplaced)
}

func TestSummarizeTies(t *testing.T) {
	s, err := Summarize(0, []float64{10, 10, 5, 5}, 0)
	require.NoError(t, err)

	// Lower index wins ties, matching the selector's ranking
	assert.Equal(t, 0, s.BestIndex)
	assert.Equal(t, 2, s.WorstIndex)
}

func TestSummarizeSingleMember(t *testing.T) {
	s, err := Summarize(0, []float64{7}, 0)
	require.NoError(t, err)

	assert.Equal(t, 7.0, s.Best)
	assert.Equal(t, 7.0, s.Worst)
	assert.Equal(t, 7.0, s.Mean)
	assert.Equal(t, 7.0, s.Median)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestSummarizeRejectsInvalidReturns(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
	}{
		{name: "empty", returns: nil},
		{name: "NaN", returns: []float64{1, math.NaN(), 3}},
		{name: "positive infinity", returns: []float64{1, math.Inf(1)}},
		{name: "negative infinity", returns: []float64{math.Inf(-1), 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(0, tt.returns, 0)
			require.Error(t, err)
			assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
		})
	}
}

func TestHyperparamSpread(t *testing.T) {
	population := []core.Member{
		core.NewAgentState("agent-0", nil, core.Hyperparams{"learning_rate": 0.1, "tau": 0.005}, 0),
		core.NewAgentState("agent-1", nil, core.Hyperparams{"learning_rate": 0.2, "tau": 0.005}, 0),
		core.NewAgentState("agent-2", nil, core.Hyperparams{"learning_rate": 0.3}, 0),
	}

	spreads := HyperparamSpread(population)
	require.Len(t, spreads, 2)

	lr := spreads["learning_rate"]
	assert.Equal(t, 3, lr.Count)
	assert.InDelta(t, 0.1, lr.Min, 1e-12)
	assert.InDelta(t, 0.3, lr.Max, 1e-12)
	assert.InDelta(t, 0.2, lr.Mean, 1e-12)
	assert.InDelta(t, 0.1, lr.StdDev, 1e-12) // sqrt(0.02/2)

	tau := spreads["tau"]
	assert.Equal(t, 2, tau.Count)
	assert.Equal(t, 0.005, tau.Min)
	assert.Equal(t, 0.005, tau.Max)
	assert.InDelta(t, 0.0, tau.StdDev, 1e-12)
}

func TestHyperparamSpreadSkipsNilMembers(t *testing.T) {
	population := []core.Member{
		nil,
		core.NewAgentState("agent-0", nil, core.Hyperparams{"learning_rate": 0.5}, 0),
	}

	spreads := HyperparamSpread(population)
	require.Len(t, spreads, 1)
	assert.Equal(t, 1, spreads["learning_rate"].Count)
	assert.Equal(t, 0.0, spreads["learning_rate"].StdDev)
}

func TestHyperparamSpreadEmptyPopulation(t *testing.T) {
	assert.Empty(t, HyperparamSpread(nil))
}
