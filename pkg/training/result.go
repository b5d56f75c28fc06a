package training

import (
	"time"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/metrics"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// Result is the outcome of a completed run.
type Result struct {
	// RunID identifies the run in logs and the store.
	RunID string `json:"run_id"`

	// Key is the final RNG key; resuming from it and Population
	// continues the run deterministically.
	Key rng.Key `json:"key"`

	// Population is the final population after the last selection.
	Population []core.Member `json:"-"`

	// Summaries holds one entry per completed generation.
	Summaries []metrics.Summary `json:"summaries"`

	// Best is a deep copy of the top-ranked member of the last
	// generation; its slot survives selection, so the copy reflects the
	// final population.
	Best       core.Member `json:"-"`
	BestReturn float64     `json:"best_return"`
	BestIndex  int         `json:"best_index"`

	Generations int           `json:"generations"`
	Duration    time.Duration `json:"duration"`
}

// BestHyperparams returns an independent copy of the winning member's
// hyperparameters.
func (r *Result) BestHyperparams() core.Hyperparams {
	if r.Best == nil {
		return nil
	}
	return r.Best.Hyperparams().Clone()
}

// FinalSummary returns the statistics of the last generation.
func (r *Result) FinalSummary() metrics.Summary {
	if len(r.Summaries) == 0 {
		return metrics.Summary{}
	}
	return r.Summaries[len(r.Summaries)-1]
}
