package benchmarks

import (
	"context"
	"fmt"
	"math"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// HyperLearningRate is the hyperparameter that scales the search
// trainer's proposal spread. It is the knob population-based training
// tunes in the bundled examples.
const HyperLearningRate = "learning_rate"

var _ core.Trainer = (*SearchTrainer)(nil)
var _ core.Evaluator = (*ObjectiveEvaluator)(nil)

// TrainerConfig tunes the stochastic search performed by SearchTrainer.
type TrainerConfig struct {
	// Annealing multiplies the proposal spread after every step.
	// Default: 0.995
	Annealing float64

	// DefaultLearningRate applies to members that carry no
	// learning_rate hyperparameter.
	// Default: 0.05
	DefaultLearningRate float64
}

// SearchTrainer improves a member by stochastic hill climbing on an
// objective: every step proposes a uniform perturbation of all
// coordinates, clamps it to the domain, and keeps it when the
// objective improves. The proposal spread is the member's learning
// rate times the domain width, annealed each step, so the learning
// rate is a real hyperparameter for selection to exploit: too small
// and progress stalls, too large and proposals overshoot.
type SearchTrainer struct {
	objective Objective
	config    TrainerConfig
}

// NewSearchTrainer creates a trainer that climbs the given objective.
func NewSearchTrainer(objective Objective, config TrainerConfig) (*SearchTrainer, error) {
	if objective == nil {
		return nil, errors.New(errors.InvalidConfig, "objective is required")
	}
	if config.Annealing < 0 || config.Annealing > 1 {
		return nil, errors.Newf(errors.InvalidConfig, "annealing must be in (0, 1], got %v", config.Annealing)
	}
	if config.DefaultLearningRate < 0 {
		return nil, errors.Newf(errors.InvalidConfig, "default learning rate must not be negative, got %v", config.DefaultLearningRate)
	}
	if config.Annealing == 0 {
		config.Annealing = 0.995
	}
	if config.DefaultLearningRate == 0 {
		config.DefaultLearningRate = 0.05
	}
	return &SearchTrainer{objective: objective, config: config}, nil
}

// Train returns an improved copy of the member. The input member is
// never modified. Draws come from the given key only, so a run is
// reproducible for a fixed key regardless of scheduling.
func (t *SearchTrainer) Train(ctx context.Context, key rng.Key, member core.Member, steps int) (core.Member, core.TrainingMetrics, error) {
	state, err := agentState(t.objective, member)
	if err != nil {
		return nil, core.TrainingMetrics{}, err
	}
	next := state.DeepCopy().(*core.AgentState)

	lr := next.Hypers[HyperLearningRate]
	if lr <= 0 {
		lr = t.config.DefaultLearningRate
	}
	low, high := t.objective.Bounds()

	rnd := key.Rand()
	bestScore := t.objective.Eval(next.Params)
	spread := lr * (high - low)
	proposal := make([]float64, len(next.Params))
	for s := 0; s < steps; s++ {
		if err := ctx.Err(); err != nil {
			return nil, core.TrainingMetrics{}, err
		}
		for d, p := range next.Params {
			p += (rnd.Float64()*2 - 1) * spread
			proposal[d] = math.Max(low, math.Min(high, p))
		}
		if score := t.objective.Eval(proposal); score > bestScore {
			copy(next.Params, proposal)
			bestScore = score
		}
		spread *= t.config.Annealing
	}

	next.OptState.Step += int64(steps)
	next.EnvSteps += int64(steps)
	return next, core.TrainingMetrics{Steps: int64(steps), Loss: -bestScore}, nil
}

// ObjectiveEvaluator scores members by evaluating the objective at
// their parameters. A positive noise level adds zero-mean Gaussian
// observation noise drawn from the evaluation key, making the return
// stochastic the way an episode rollout would be.
type ObjectiveEvaluator struct {
	objective Objective
	noise     float64
}

// NewEvaluator creates an evaluator for the objective. noise is the
// standard deviation of the observation noise; zero disables it.
func NewEvaluator(objective Objective, noise float64) (*ObjectiveEvaluator, error) {
	if objective == nil {
		return nil, errors.New(errors.InvalidConfig, "objective is required")
	}
	if noise < 0 {
		return nil, errors.Newf(errors.InvalidConfig, "noise must not be negative, got %v", noise)
	}
	return &ObjectiveEvaluator{objective: objective, noise: noise}, nil
}

func (e *ObjectiveEvaluator) Evaluate(ctx context.Context, key rng.Key, member core.Member) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	state, err := agentState(e.objective, member)
	if err != nil {
		return 0, err
	}
	score := e.objective.Eval(state.Params)
	if e.noise > 0 {
		score += key.Rand().NormFloat64() * e.noise
	}
	return score, nil
}

func agentState(objective Objective, member core.Member) (*core.AgentState, error) {
	state, ok := member.(*core.AgentState)
	if !ok {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "benchmark collaborators require agent state members"),
			errors.Fields{"type": fmt.Sprintf("%T", member)},
		)
	}
	if want := objective.Dims(); want != 0 && len(state.Params) != want {
		return nil, errors.WithFields(
			errors.Newf(errors.InvalidInput, "objective %s requires %d dimensions", objective.Name(), want),
			errors.Fields{"got": len(state.Params)},
		)
	}
	return state, nil
}
