package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
)

// Summary captures the return statistics of a population at one generation.
type Summary struct {
	Generation     int     `json:"generation"`
	PopulationSize int     `json:"population_size"`
	Best           float64 `json:"best"`
	BestIndex      int     `json:"best_index"`
	Worst          float64 `json:"worst"`
	WorstIndex     int     `json:"worst_index"`
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	StdDev         float64 `json:"std_dev"`
	NumReplaced    int     `json:"num_replaced"`
}

// Summarize computes the population statistics for one generation of returns.
// Ties for best or worst resolve to the lower index, matching the selector's
// ranking. Median is the empirical 0.5 quantile.
func Summarize(generation int, returns []float64, numReplaced int) (Summary, error) {
	if len(returns) == 0 {
		return Summary{}, errors.New(errors.InvalidInput, "cannot summarize an empty slice of returns")
	}
	for i, r := range returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return Summary{}, errors.WithFields(
				errors.New(errors.InvalidInput, "returns must be finite"),
				errors.Fields{"index": i, "value": r},
			)
		}
	}

	bestIndex, worstIndex := 0, 0
	for i, r := range returns {
		if r > returns[bestIndex] {
			bestIndex = i
		}
		if r < returns[worstIndex] {
			worstIndex = i
		}
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	return Summary{
		Generation:     generation,
		PopulationSize: len(returns),
		Best:           returns[bestIndex],
		BestIndex:      bestIndex,
		Worst:          returns[worstIndex],
		WorstIndex:     worstIndex,
		Mean:           stat.Mean(returns, nil),
		Median:         stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev:         sampleStdDev(returns),
		NumReplaced:    numReplaced,
	}, nil
}

// Spread describes how one hyperparameter is distributed across a population.
type Spread struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// HyperparamSpread reports the per-name distribution of hyperparameters
// across a population. Count is the number of members carrying the name,
// so heterogeneous populations are supported.
func HyperparamSpread(population []core.Member) map[string]Spread {
	values := make(map[string][]float64)
	for _, member := range population {
		if member == nil {
			continue
		}
		for name, value := range member.Hyperparams() {
			values[name] = append(values[name], value)
		}
	}

	spreads := make(map[string]Spread, len(values))
	for name, vs := range values {
		min, max := vs[0], vs[0]
		for _, v := range vs[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		spreads[name] = Spread{
			Min:    min,
			Max:    max,
			Mean:   stat.Mean(vs, nil),
			StdDev: sampleStdDev(vs),
			Count:  len(vs),
		}
	}
	return spreads
}

// sampleStdDev is stat.StdDev with a zero result for fewer than two samples.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}
