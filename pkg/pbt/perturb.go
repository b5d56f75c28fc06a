package pbt

import (
	"sort"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// DefaultPerturbationFactors are the classic PBT explore factors: each
// copied hyperparameter is either shrunk or grown by 20%.
var DefaultPerturbationFactors = []float64{0.8, 1.2}

// Perturber derives new hyperparameters for a freshly copied member.
// Implementations must not mutate the input map and must be
// deterministic in the key: same key and input, same output.
type Perturber interface {
	Perturb(key rng.Key, h core.Hyperparams) core.Hyperparams
}

// FactorPerturber multiplies each hyperparameter by a factor drawn
// uniformly from a fixed set, independently per hyperparameter.
type FactorPerturber struct {
	factors []float64
}

// NewFactorPerturber creates a multiplicative perturber. With no
// arguments it uses DefaultPerturbationFactors.
func NewFactorPerturber(factors ...float64) *FactorPerturber {
	if len(factors) == 0 {
		factors = DefaultPerturbationFactors
	}
	owned := make([]float64, len(factors))
	copy(owned, factors)
	return &FactorPerturber{factors: owned}
}

// Perturb implements Perturber. Hyperparameters are visited in sorted
// name order so the draw sequence does not depend on map iteration
// order.
func (p *FactorPerturber) Perturb(key rng.Key, h core.Hyperparams) core.Hyperparams {
	if len(h) == 0 {
		return h.Clone()
	}

	names := sortedNames(h)
	r := key.Rand()

	out := make(core.Hyperparams, len(h))
	for _, name := range names {
		out[name] = h[name] * p.factors[r.Intn(len(p.factors))]
	}
	return out
}

// AdditivePerturber adds zero-mean Gaussian noise with the given scale
// to each hyperparameter, independently per hyperparameter.
type AdditivePerturber struct {
	Scale float64
}

// Perturb implements Perturber.
func (p AdditivePerturber) Perturb(key rng.Key, h core.Hyperparams) core.Hyperparams {
	if len(h) == 0 {
		return h.Clone()
	}

	names := sortedNames(h)
	r := key.Rand()

	out := make(core.Hyperparams, len(h))
	for _, name := range names {
		out[name] = h[name] + r.NormFloat64()*p.Scale
	}
	return out
}

// NoopPerturber leaves hyperparameters unchanged. Useful for isolating
// the exploit step in experiments.
type NoopPerturber struct{}

// Perturb implements Perturber.
func (NoopPerturber) Perturb(_ rng.Key, h core.Hyperparams) core.Hyperparams {
	return h.Clone()
}

func sortedNames(h core.Hyperparams) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
