package testutil

import (
	"context"
	"fmt"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// NewPopulation builds n agent states with recognizable IDs, params
// seeded by index, and independent copies of the given hyperparameters.
func NewPopulation(n, paramDim int, hypers core.Hyperparams) []core.Member {
	members := make([]core.Member, n)
	for i := range members {
		params := make([]float64, paramDim)
		for d := range params {
			params[d] = float64(i) + float64(d)/10
		}
		members[i] = core.NewAgentState(fmt.Sprintf("agent-%d", i), params, hypers, 0)
	}
	return members
}

// AgentIDs extracts the AgentID of every member, preserving order.
func AgentIDs(population []core.Member) []string {
	ids := make([]string, len(population))
	for i, member := range population {
		if state, ok := member.(*core.AgentState); ok {
			ids[i] = state.AgentID
		} else {
			ids[i] = "?"
		}
	}
	return ids
}

// IdentityTrainer returns members unchanged, reporting the requested
// step count.
func IdentityTrainer() core.Trainer {
	return core.TrainerFunc(func(ctx context.Context, key rng.Key, member core.Member, steps int) (core.Member, core.TrainingMetrics, error) {
		return member, core.TrainingMetrics{Steps: int64(steps)}, nil
	})
}

// FirstParamEvaluator scores a member by its first parameter. The score
// is deterministic and ignores the key, which makes loop outcomes easy
// to predict in tests.
func FirstParamEvaluator() core.Evaluator {
	return core.EvaluatorFunc(func(ctx context.Context, key rng.Key, member core.Member) (float64, error) {
		state, ok := member.(*core.AgentState)
		if !ok || len(state.Params) == 0 {
			return 0, nil
		}
		return state.Params[0], nil
	})
}
