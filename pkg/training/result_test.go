package training

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/metrics"
)

func TestResultBestHyperparams(t *testing.T) {
	var empty Result
	assert.Nil(t, empty.BestHyperparams())

	result := Result{
		Best: core.NewAgentState("best", []float64{1}, core.Hyperparams{"learning_rate": 0.3}, 0),
	}
	hypers := result.BestHyperparams()
	assert.Equal(t, core.Hyperparams{"learning_rate": 0.3}, hypers)

	// The returned map is a copy.
	hypers["learning_rate"] = 9
	assert.Equal(t, 0.3, result.Best.Hyperparams()["learning_rate"])
}

func TestResultFinalSummary(t *testing.T) {
	var empty Result
	assert.Equal(t, metrics.Summary{}, empty.FinalSummary())

	result := Result{
		Summaries: []metrics.Summary{
			{Generation: 0, Best: 1},
			{Generation: 1, Best: 4},
		},
	}
	assert.Equal(t, 4.0, result.FinalSummary().Best)
	assert.Equal(t, 1, result.FinalSummary().Generation)
}
