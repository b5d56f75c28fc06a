// Package pbt implements the selection and replacement step of
// population-based training: rank members by their evaluation returns,
// overwrite the worst performers with deep copies of the best, and
// optionally perturb the copied hyperparameters.
package pbt

import (
	"context"
	"math"
	"sort"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/logging"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// Config controls how SelectAndReplace picks sources and targets.
type Config struct {
	// PopulationSize is the exact number of members each call operates on.
	PopulationSize int `json:"population_size"`

	// NumBestToReplaceFrom is how many top-ranked members serve as copy
	// sources. Default: 1
	NumBestToReplaceFrom int `json:"num_best_to_replace_from"`

	// NumWorseToReplace is how many bottom-ranked members get overwritten
	// each call. Default: 1
	NumWorseToReplace int `json:"num_worse_to_replace"`

	// PerturbHyperparams enables the explore step: copied members get
	// their hyperparameters perturbed. Default: false
	PerturbHyperparams bool `json:"perturb_hyperparameters"`
}

// Selector performs the exploit/explore step over one population.
// A Selector is stateless between calls; all randomness comes from the
// key passed to SelectAndReplace, so calls are reproducible.
type Selector struct {
	config    Config
	perturber Perturber
	logger    *logging.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithPerturber overrides the perturbation strategy applied to copied
// members when PerturbHyperparams is set.
func WithPerturber(p Perturber) Option {
	return func(s *Selector) {
		s.perturber = p
	}
}

// New creates a Selector, rejecting inconsistent configurations with an
// InvalidConfig error before any call can run.
func New(config Config, opts ...Option) (*Selector, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	s := &Selector{
		config:    config,
		perturber: NewFactorPerturber(),
		logger:    logging.GetLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Config returns the selector's configuration.
func (s *Selector) Config() Config {
	return s.config
}

func validateConfig(config Config) error {
	if config.PopulationSize <= 0 {
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "population size must be positive"),
			errors.Fields{"population_size": config.PopulationSize},
		)
	}
	if config.NumBestToReplaceFrom < 0 || config.NumWorseToReplace < 0 {
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "replacement counts must not be negative"),
			errors.Fields{
				"num_best_to_replace_from": config.NumBestToReplaceFrom,
				"num_worse_to_replace":     config.NumWorseToReplace,
			},
		)
	}
	if config.NumBestToReplaceFrom+config.NumWorseToReplace > config.PopulationSize {
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "replacement counts exceed population size"),
			errors.Fields{
				"num_best_to_replace_from": config.NumBestToReplaceFrom,
				"num_worse_to_replace":     config.NumWorseToReplace,
				"population_size":          config.PopulationSize,
			},
		)
	}
	if config.NumWorseToReplace > 0 && config.NumBestToReplaceFrom == 0 {
		return errors.New(errors.InvalidConfig,
			"num_worse_to_replace requires at least one source member")
	}
	return nil
}

// SelectAndReplace runs one exploit/explore step.
//
// Members are ranked by returns, higher is better, ties won by the lower
// index. The bottom NumWorseToReplace members are overwritten with deep
// copies of members drawn uniformly, with replacement, from the top
// NumBestToReplaceFrom. Non-replaced members are carried over untouched.
// The input population is never mutated; callers rebind to the returned
// slice. The returned key always differs from the input key.
//
// The call validates everything before touching any member: on error the
// returned population is nil and no copy or perturbation has happened.
// The context carries no cancellation semantics here; it only enriches
// debug logging.
func (s *Selector) SelectAndReplace(ctx context.Context, key rng.Key, returns []float64, population []core.Member) (rng.Key, []core.Member, error) {
	if err := s.validateInputs(returns, population); err != nil {
		return key, nil, err
	}

	next, sub := key.Pair()

	bestIndices, worseIndices := rankMembers(returns, s.config.NumBestToReplaceFrom, s.config.NumWorseToReplace)

	newPopulation := make([]core.Member, len(population))
	copy(newPopulation, population)

	if len(worseIndices) == 0 {
		return next, newPopulation, nil
	}

	mapKey, perturbKey := sub.Pair()
	draw := mapKey.Rand()

	sources := make([]int, len(worseIndices))
	for i, target := range worseIndices {
		source := bestIndices[draw.Intn(len(bestIndices))]
		sources[i] = source

		member := population[source].DeepCopy()
		if s.config.PerturbHyperparams && s.perturber != nil {
			member.SetHyperparams(
				s.perturber.Perturb(perturbKey.Fold(uint64(target)), member.Hyperparams()),
			)
		}
		newPopulation[target] = member
	}

	s.logger.ReplacementEvent(ctx, generationFrom(ctx), sources, worseIndices)

	return next, newPopulation, nil
}

func (s *Selector) validateInputs(returns []float64, population []core.Member) error {
	if len(returns) != s.config.PopulationSize {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "returns length does not match population size"),
			errors.Fields{
				"population_size": s.config.PopulationSize,
				"returns":         len(returns),
			},
		)
	}
	if len(population) != s.config.PopulationSize {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "population length does not match population size"),
			errors.Fields{
				"population_size": s.config.PopulationSize,
				"population":      len(population),
			},
		)
	}
	for i, value := range returns {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "returns must be finite"),
				errors.Fields{"index": i, "value": value},
			)
		}
	}
	for i, member := range population {
		if member == nil {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "population contains a nil member"),
				errors.Fields{"index": i},
			)
		}
	}
	return nil
}

// rankMembers returns the copy sources (top numBest by return, ties won
// by the lower index) and the replacement targets (bottom numWorse by
// return, ties again won by the lower index). A member qualifying for
// both sides, which only happens when tied returns straddle both cuts,
// stays a source and is dropped from the targets: best members are never
// overwritten.
func rankMembers(returns []float64, numBest, numWorse int) (best, worse []int) {
	n := len(returns)

	descending := make([]int, n)
	ascending := make([]int, n)
	for i := 0; i < n; i++ {
		descending[i] = i
		ascending[i] = i
	}

	sort.Slice(descending, func(i, j int) bool {
		a, b := descending[i], descending[j]
		if returns[a] != returns[b] {
			return returns[a] > returns[b]
		}
		return a < b
	})
	sort.Slice(ascending, func(i, j int) bool {
		a, b := ascending[i], ascending[j]
		if returns[a] != returns[b] {
			return returns[a] < returns[b]
		}
		return a < b
	})

	best = descending[:numBest]

	isBest := make(map[int]bool, numBest)
	for _, index := range best {
		isBest[index] = true
	}

	worse = make([]int, 0, numWorse)
	for _, index := range ascending[:numWorse] {
		if !isBest[index] {
			worse = append(worse, index)
		}
	}

	return best, worse
}

func generationFrom(ctx context.Context) int {
	if generation, ok := logging.GetGeneration(ctx); ok {
		return generation
	}
	if state := core.GetExecutionState(ctx); state != nil {
		return state.GetGeneration()
	}
	return -1
}
