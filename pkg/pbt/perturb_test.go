package pbt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

func TestFactorPerturber(t *testing.T) {
	perturber := NewFactorPerturber()
	hypers := core.Hyperparams{
		"learning_rate": 0.001,
		"discount":      0.99,
		"tau":           0.005,
	}

	t.Run("each value is scaled by a known factor", func(t *testing.T) {
		out := perturber.Perturb(rng.NewKey(1), hypers)
		require.Len(t, out, len(hypers))

		for name, value := range out {
			ratio := value / hypers[name]
			assert.True(t,
				math.Abs(ratio-0.8) < 1e-12 || math.Abs(ratio-1.2) < 1e-12,
				"%s: unexpected ratio %v", name, ratio)
		}
	})

	t.Run("input map is never mutated", func(t *testing.T) {
		perturber.Perturb(rng.NewKey(2), hypers)
		assert.Equal(t, 0.001, hypers["learning_rate"])
		assert.Equal(t, 0.99, hypers["discount"])
	})

	t.Run("deterministic in the key", func(t *testing.T) {
		first := perturber.Perturb(rng.NewKey(3), hypers)
		second := perturber.Perturb(rng.NewKey(3), hypers)
		assert.Equal(t, first, second)
	})

	t.Run("different keys can differ", func(t *testing.T) {
		outcomes := make(map[float64]bool)
		for seed := uint64(0); seed < 16; seed++ {
			out := perturber.Perturb(rng.NewKey(seed), hypers)
			outcomes[out["learning_rate"]] = true
		}
		assert.Greater(t, len(outcomes), 1,
			"sixteen keys should not all pick the same factor")
	})

	t.Run("custom factors", func(t *testing.T) {
		halving := NewFactorPerturber(0.5)
		out := halving.Perturb(rng.NewKey(4), core.Hyperparams{"lr": 1.0})
		assert.InDelta(t, 0.5, out["lr"], 1e-12)
	})

	t.Run("empty hyperparameters", func(t *testing.T) {
		out := perturber.Perturb(rng.NewKey(5), core.Hyperparams{})
		assert.Empty(t, out)
	})
}

func TestFactorPerturberOwnsFactors(t *testing.T) {
	factors := []float64{2.0}
	perturber := NewFactorPerturber(factors...)

	factors[0] = 100

	out := perturber.Perturb(rng.NewKey(1), core.Hyperparams{"lr": 1.0})
	assert.InDelta(t, 2.0, out["lr"], 1e-12)
}

func TestAdditivePerturber(t *testing.T) {
	perturber := AdditivePerturber{Scale: 0.1}
	hypers := core.Hyperparams{"lr": 1.0, "tau": 2.0}

	t.Run("deterministic in the key", func(t *testing.T) {
		first := perturber.Perturb(rng.NewKey(10), hypers)
		second := perturber.Perturb(rng.NewKey(10), hypers)
		assert.Equal(t, first, second)
	})

	t.Run("values move but stay near the input", func(t *testing.T) {
		out := perturber.Perturb(rng.NewKey(11), hypers)
		for name := range hypers {
			assert.InDelta(t, hypers[name], out[name], 1.0,
				"noise at scale 0.1 should stay close")
		}
	})

	t.Run("input map is never mutated", func(t *testing.T) {
		perturber.Perturb(rng.NewKey(12), hypers)
		assert.Equal(t, 1.0, hypers["lr"])
	})

	t.Run("zero scale is identity", func(t *testing.T) {
		identity := AdditivePerturber{Scale: 0}
		out := identity.Perturb(rng.NewKey(13), hypers)
		assert.Equal(t, hypers, out)
	})
}

func TestNoopPerturber(t *testing.T) {
	hypers := core.Hyperparams{"lr": 0.5}

	out := NoopPerturber{}.Perturb(rng.NewKey(1), hypers)
	assert.Equal(t, hypers, out)

	// Still a copy, not the same map
	out["lr"] = 9
	assert.Equal(t, 0.5, hypers["lr"])
}
