// Package testutil provides shared mocks and builders for tests.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// MockTrainer is a mock implementation of core.Trainer.
type MockTrainer struct {
	mock.Mock
}

func (m *MockTrainer) Train(ctx context.Context, key rng.Key, member core.Member, steps int) (core.Member, core.TrainingMetrics, error) {
	args := m.Called(ctx, key, member, steps)
	if args.Get(0) == nil {
		return nil, core.TrainingMetrics{}, args.Error(2)
	}
	return args.Get(0).(core.Member), args.Get(1).(core.TrainingMetrics), args.Error(2)
}

// MockEvaluator is a mock implementation of core.Evaluator.
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, key rng.Key, member core.Member) (float64, error) {
	args := m.Called(ctx, key, member)
	return args.Get(0).(float64), args.Error(1)
}

// MockMember implements core.Member for tests that only exercise the
// selection protocol and do not care about agent internals. DeepCopy
// honors a mock expectation when one is set and otherwise returns a
// plain copy.
type MockMember struct {
	mock.Mock
	ID     string
	Hypers core.Hyperparams
}

func (m *MockMember) DeepCopy() core.Member {
	for _, call := range m.ExpectedCalls {
		if call.Method == "DeepCopy" {
			args := m.Called()
			return args.Get(0).(core.Member)
		}
	}
	return &MockMember{ID: m.ID, Hypers: m.Hypers.Clone()}
}

func (m *MockMember) Hyperparams() core.Hyperparams {
	return m.Hypers
}

func (m *MockMember) SetHyperparams(h core.Hyperparams) {
	m.Hypers = h
}
