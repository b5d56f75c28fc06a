package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioGeek/qdax-go/pkg/rng"
)

func TestReplayBufferAdd(t *testing.T) {
	buf := NewReplayBuffer(3)
	assert.Equal(t, 0, buf.Len())

	for i := 0; i < 3; i++ {
		buf.Add(Transition{Reward: float64(i)})
	}
	assert.Equal(t, 3, buf.Len())

	// A fourth add evicts the oldest entry
	buf.Add(Transition{Reward: 3})
	assert.Equal(t, 3, buf.Len())

	rewards := make([]float64, 0, 3)
	for _, item := range buf.Items {
		rewards = append(rewards, item.Reward)
	}
	assert.ElementsMatch(t, []float64{1, 2, 3}, rewards)
}

func TestReplayBufferWrapAround(t *testing.T) {
	buf := NewReplayBuffer(2)
	for i := 0; i < 7; i++ {
		buf.Add(Transition{Reward: float64(i)})
	}

	rewards := []float64{buf.Items[0].Reward, buf.Items[1].Reward}
	assert.ElementsMatch(t, []float64{5, 6}, rewards)
}

func TestReplayBufferOwnsTransitions(t *testing.T) {
	buf := NewReplayBuffer(2)

	obs := []float64{1, 2}
	buf.Add(Transition{Obs: obs})

	obs[0] = 99
	assert.Equal(t, float64(1), buf.Items[0].Obs[0],
		"buffer must copy transitions on Add")
}

func TestReplayBufferClone(t *testing.T) {
	buf := NewReplayBuffer(4)
	buf.Add(Transition{Obs: []float64{1}, Reward: 1})
	buf.Add(Transition{Obs: []float64{2}, Reward: 2})

	cloned := buf.Clone()
	require.Equal(t, buf, cloned)

	cloned.Add(Transition{Reward: 3})
	cloned.Items[0].Obs[0] = 99

	assert.Equal(t, 2, buf.Len())
	assert.Equal(t, float64(1), buf.Items[0].Obs[0])
}

func TestReplayBufferSample(t *testing.T) {
	t.Run("empty buffer", func(t *testing.T) {
		buf := NewReplayBuffer(4)
		assert.Nil(t, buf.Sample(rng.NewKey(1), 3))
	})

	t.Run("non-positive count", func(t *testing.T) {
		buf := NewReplayBuffer(4)
		buf.Add(Transition{Reward: 1})
		assert.Nil(t, buf.Sample(rng.NewKey(1), 0))
	})

	t.Run("samples are copies", func(t *testing.T) {
		buf := NewReplayBuffer(4)
		buf.Add(Transition{Obs: []float64{5}})

		sample := buf.Sample(rng.NewKey(2), 1)
		require.Len(t, sample, 1)

		sample[0].Obs[0] = 99
		assert.Equal(t, float64(5), buf.Items[0].Obs[0])
	})

	t.Run("with replacement past buffer size", func(t *testing.T) {
		buf := NewReplayBuffer(2)
		buf.Add(Transition{Reward: 1})

		sample := buf.Sample(rng.NewKey(3), 5)
		assert.Len(t, sample, 5)
	})
}

func TestNewReplayBufferMinimumCapacity(t *testing.T) {
	buf := NewReplayBuffer(0)
	assert.Equal(t, 1, buf.Capacity)

	buf.Add(Transition{Reward: 1})
	buf.Add(Transition{Reward: 2})
	assert.Equal(t, 1, buf.Len())
}
