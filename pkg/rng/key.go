package rng

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Key is an opaque, splittable random state threaded through stochastic
// operations. A Key is a value: operations derive fresh keys instead of
// mutating the receiver, so the same key always reproduces the same draws.
//
// The intended discipline is the usual one for splittable generators:
// consume a key exactly once, either by splitting it or by drawing from it.
// Code that needs both a successor key and draw material should split
// first:
//
//	next, sub := key.Pair()
//	r := sub.Rand()
//	// ... draws from r ...
//	return next
type Key struct {
	state uint64
}

// SplitMix64 constants. The increment is the odd 64-bit golden ratio, so
// advancing a key always changes its state.
const (
	keyGamma = 0x9E3779B97F4A7C15
	drawSalt = 0xD1B54A32D192ED03
)

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// NewKey derives a key from a seed. Equal seeds yield equal keys.
func NewKey(seed uint64) Key {
	return Key{state: mix64(seed + keyGamma)}
}

// Split derives n statistically independent child keys, consuming the
// receiver. Split(1)[0] equals Next().
func (k Key) Split(n int) []Key {
	if n <= 0 {
		return nil
	}
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = Key{state: mix64(k.state + uint64(i+1)*keyGamma)}
	}
	return keys
}

// Pair splits the receiver into a successor key and a subkey. The common
// calling pattern keeps the successor and spends the subkey on draws.
func (k Key) Pair() (Key, Key) {
	keys := k.Split(2)
	return keys[0], keys[1]
}

// Next returns the successor key. The result always differs from the
// receiver.
func (k Key) Next() Key {
	return Key{state: mix64(k.state + keyGamma)}
}

// Fold mixes caller data into the key, deriving a distinct stream per
// value. Used to give each shard or member its own key lineage without
// coordinating global split counts.
func (k Key) Fold(data uint64) Key {
	return Key{state: mix64(k.state ^ mix64(data+keyGamma))}
}

// Source returns a seeded source for the key's draw stream. The draw
// stream is salted so that drawing from a key and splitting it never
// observe the same sequence.
func (k Key) Source() rand.Source {
	return rand.NewSource(mix64(k.state ^ drawSalt))
}

// Rand returns a *rand.Rand over Source for convenience.
func (k Key) Rand() *rand.Rand {
	return rand.New(k.Source())
}

// Equal reports whether two keys carry the same state.
func (k Key) Equal(other Key) bool {
	return k.state == other.state
}

// String renders the key state as fixed-width hex for logs.
func (k Key) String() string {
	return fmt.Sprintf("%016x", k.state)
}

// MarshalText encodes the key for checkpoints.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText restores a key encoded by MarshalText.
func (k *Key) UnmarshalText(text []byte) error {
	var state uint64
	if _, err := fmt.Sscanf(string(text), "%016x", &state); err != nil {
		return fmt.Errorf("malformed key %q: %w", string(text), err)
	}
	k.state = state
	return nil
}
