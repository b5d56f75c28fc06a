package core

import (
	"context"

	"github.com/BioGeek/qdax-go/pkg/rng"
)

// TrainingMetrics summarizes one training phase of a single member.
type TrainingMetrics struct {
	Steps int64   `json:"steps"`
	Loss  float64 `json:"loss"`
}

// Trainer advances one member by a fixed number of training steps.
// Implementations return a new member rather than mutating the input;
// callers rebind to the returned value.
type Trainer interface {
	Train(ctx context.Context, key rng.Key, member Member, steps int) (Member, TrainingMetrics, error)
}

// Evaluator produces the scalar return of a member. Higher is better.
type Evaluator interface {
	Evaluate(ctx context.Context, key rng.Key, member Member) (float64, error)
}

// TrainerFunc adapts a plain function to the Trainer interface.
type TrainerFunc func(ctx context.Context, key rng.Key, member Member, steps int) (Member, TrainingMetrics, error)

func (f TrainerFunc) Train(ctx context.Context, key rng.Key, member Member, steps int) (Member, TrainingMetrics, error) {
	return f(ctx, key, member, steps)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, key rng.Key, member Member) (float64, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, key rng.Key, member Member) (float64, error) {
	return f(ctx, key, member)
}
