package core

// Hyperparams holds the tunable hyperparameters of a population member,
// keyed by name (for example "learning_rate" or "entropy_coefficient").
// Values are plain float64 so perturbation can scale them uniformly.
type Hyperparams map[string]float64

// Clone returns an independent copy of the hyperparameter set.
func (h Hyperparams) Clone() Hyperparams {
	if h == nil {
		return nil
	}
	out := make(Hyperparams, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Member is one slot of a training population. Implementations bundle
// everything a training step touches: parameters, optimizer state,
// hyperparameters and accumulated experience. Identity is positional;
// the member's index in the population slice is its identity for
// selection purposes.
type Member interface {
	// DeepCopy returns a fully independent copy of the member. No part
	// of the copy may alias the receiver: mutating one must never be
	// observable through the other.
	DeepCopy() Member

	// Hyperparams returns the member's current hyperparameters. Callers
	// must treat the result as read-only; use SetHyperparams to change
	// them.
	Hyperparams() Hyperparams

	// SetHyperparams replaces the member's hyperparameters.
	SetHyperparams(h Hyperparams)
}
