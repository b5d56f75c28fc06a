// Package benchmarks provides synthetic optimization objectives and a
// stochastic-search trainer so that population-based training can be
// exercised end to end without an external reinforcement-learning stack.
// Objectives are negated where the classical formulation minimizes, so
// a higher value is always better, matching the return convention of
// the training loop.
package benchmarks

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// Objective is a scalar function over a parameter vector. Higher is
// better.
type Objective interface {
	Name() string
	// Eval returns the objective value at x.
	Eval(x []float64) float64
	// Bounds returns the box constraint applied to every coordinate.
	Bounds() (low, high float64)
	// Dims returns the required dimensionality, or 0 when the
	// objective accepts vectors of any length.
	Dims() int
}

// ByName returns the named standard objective. Names are matched
// case-insensitively.
func ByName(name string) (Objective, error) {
	switch strings.ToLower(name) {
	case "sphere":
		return Sphere{}, nil
	case "rastrigin":
		return Rastrigin{}, nil
	case "eggholder":
		return Eggholder{}, nil
	default:
		return nil, errors.Newf(errors.InvalidConfig, "unknown objective %q", name)
	}
}

// Sphere is the negated sum of squares. Its maximum is 0 at the origin.
type Sphere struct{}

func (Sphere) Name() string { return "sphere" }

func (Sphere) Eval(x []float64) float64 {
	return -floats.Dot(x, x)
}

func (Sphere) Bounds() (float64, float64) { return -5.12, 5.12 }

func (Sphere) Dims() int { return 0 }

// Rastrigin is the negated Rastrigin function, a highly multimodal
// surface whose maximum is 0 at the origin.
type Rastrigin struct{}

func (Rastrigin) Name() string { return "rastrigin" }

func (Rastrigin) Eval(x []float64) float64 {
	sum := 10.0 * float64(len(x))
	for _, xi := range x {
		sum += xi*xi - 10.0*math.Cos(2*math.Pi*xi)
	}
	return -sum
}

func (Rastrigin) Bounds() (float64, float64) { return -5.12, 5.12 }

func (Rastrigin) Dims() int { return 0 }

// Eggholder is the negated two-dimensional Eggholder function. Its
// maximum is roughly 959.64 at (512, 404.23), sitting in a corner of
// the domain behind many deep local optima.
type Eggholder struct{}

func (Eggholder) Name() string { return "eggholder" }

func (Eggholder) Eval(x []float64) float64 {
	a := x[1] + 47
	f := -a*math.Sin(math.Sqrt(math.Abs(x[0]/2+a))) -
		x[0]*math.Sin(math.Sqrt(math.Abs(x[0]-a)))
	return -f
}

func (Eggholder) Bounds() (float64, float64) { return -512, 512 }

func (Eggholder) Dims() int { return 2 }

// InitialPopulation samples size members whose parameters are drawn
// uniformly from the objective's bounds. Hyperparameter values are
// jittered by a factor of up to 2 in either direction around the given
// base values, so selection starts from a spread of configurations.
// Sampling is keyed per member, so the population is reproducible.
// bufferCapacity sizes each member's replay buffer; zero disables it.
func InitialPopulation(key rng.Key, objective Objective, size, dims int, hypers core.Hyperparams, bufferCapacity int) ([]core.Member, error) {
	if objective == nil {
		return nil, errors.New(errors.InvalidConfig, "objective is required")
	}
	if size <= 0 {
		return nil, errors.Newf(errors.InvalidConfig, "population size must be positive, got %d", size)
	}
	if dims <= 0 {
		return nil, errors.Newf(errors.InvalidConfig, "dimensionality must be positive, got %d", dims)
	}
	if bufferCapacity < 0 {
		return nil, errors.Newf(errors.InvalidConfig, "buffer capacity must not be negative, got %d", bufferCapacity)
	}
	if want := objective.Dims(); want != 0 && dims != want {
		return nil, errors.WithFields(
			errors.Newf(errors.InvalidConfig, "objective %s requires %d dimensions", objective.Name(), want),
			errors.Fields{"got": dims},
		)
	}

	names := make([]string, 0, len(hypers))
	for name := range hypers {
		names = append(names, name)
	}
	sort.Strings(names)

	low, high := objective.Bounds()
	members := make([]core.Member, size)
	for i := range members {
		rnd := key.Fold(uint64(i)).Rand()
		params := make([]float64, dims)
		for d := range params {
			params[d] = low + rnd.Float64()*(high-low)
		}
		jittered := hypers.Clone()
		for _, name := range names {
			jittered[name] *= math.Pow(2, rnd.Float64()*2-1)
		}
		members[i] = core.NewAgentState(fmt.Sprintf("member-%03d", i), params, jittered, bufferCapacity)
	}
	return members, nil
}
