package core

import (
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// Transition is a single step of recorded experience.
type Transition struct {
	Obs     []float64 `json:"obs"`
	Action  []float64 `json:"action"`
	Reward  float64   `json:"reward"`
	NextObs []float64 `json:"next_obs"`
	Done    bool      `json:"done"`
}

// Clone returns an independent copy of the transition.
func (t Transition) Clone() Transition {
	return Transition{
		Obs:     cloneFloats(t.Obs),
		Action:  cloneFloats(t.Action),
		Reward:  t.Reward,
		NextObs: cloneFloats(t.NextObs),
		Done:    t.Done,
	}
}

// ReplayBuffer is a fixed-capacity ring of transitions. Once full, new
// transitions overwrite the oldest ones. Fields are exported so whole
// buffers serialize with the rest of a member's state; callers should
// go through Add and Sample rather than touching them directly.
type ReplayBuffer struct {
	Capacity int          `json:"capacity"`
	Items    []Transition `json:"items"`
	Cursor   int          `json:"cursor"`
}

// NewReplayBuffer creates an empty buffer holding at most capacity
// transitions.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &ReplayBuffer{
		Capacity: capacity,
		Items:    make([]Transition, 0, capacity),
	}
}

// Add records a transition, evicting the oldest one when the buffer is
// full. The buffer stores its own copy, so callers may reuse the
// argument's slices afterwards.
func (b *ReplayBuffer) Add(t Transition) {
	t = t.Clone()
	if len(b.Items) < b.Capacity {
		b.Items = append(b.Items, t)
	} else {
		b.Items[b.Cursor] = t
	}
	b.Cursor = (b.Cursor + 1) % b.Capacity
}

// Len returns the number of stored transitions.
func (b *ReplayBuffer) Len() int {
	return len(b.Items)
}

// Sample draws n transitions uniformly with replacement. The same key
// always yields the same sample. Returns nil when the buffer is empty.
func (b *ReplayBuffer) Sample(key rng.Key, n int) []Transition {
	if len(b.Items) == 0 || n <= 0 {
		return nil
	}
	r := key.Rand()
	out := make([]Transition, n)
	for i := range out {
		out[i] = b.Items[r.Intn(len(b.Items))].Clone()
	}
	return out
}

// Clone returns a fully independent copy of the buffer.
func (b *ReplayBuffer) Clone() *ReplayBuffer {
	cp := &ReplayBuffer{
		Capacity: b.Capacity,
		Items:    make([]Transition, len(b.Items), cap(b.Items)),
		Cursor:   b.Cursor,
	}
	for i, item := range b.Items {
		cp.Items[i] = item.Clone()
	}
	return cp
}
