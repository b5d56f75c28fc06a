package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// bareMember implements core.Member without being an AgentState, so the
// codec must refuse it.
type bareMember struct{}

func (m *bareMember) DeepCopy() core.Member             { return &bareMember{} }
func (m *bareMember) Hyperparams() core.Hyperparams     { return nil }
func (m *bareMember) SetHyperparams(h core.Hyperparams) {}

func TestEncodeCheckpointRejectsForeignMembers(t *testing.T) {
	_, err := EncodeCheckpoint(Checkpoint{
		RunID:      "run",
		Population: []core.Member{&bareMember{}},
	})
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestEncodeCheckpointRejectsNilMembers(t *testing.T) {
	_, err := EncodeCheckpoint(Checkpoint{
		RunID:      "run",
		Population: []core.Member{nil},
	})
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestDecodeCheckpointRejectsGarbage(t *testing.T) {
	_, err := DecodeCheckpoint([]byte("{not json"))
	require.Error(t, err)
	assert.Equal(t, errors.CheckpointFailed, errors.CodeOf(err))
}

func TestEncodeCheckpointKeyRendering(t *testing.T) {
	key := rng.NewKey(7)
	data, err := EncodeCheckpoint(Checkpoint{
		RunID:      "run",
		Generation: 2,
		Key:        key,
		Population: []core.Member{core.NewAgentState("a", []float64{1}, nil, 0)},
	})
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, key.String(), payload["key"])
	assert.Equal(t, "run", payload["run_id"])
}

func TestCodecRoundTripEmptyPopulation(t *testing.T) {
	data, err := EncodeCheckpoint(Checkpoint{RunID: "run", Generation: 0})
	require.NoError(t, err)

	decoded, err := DecodeCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, "run", decoded.RunID)
	assert.Empty(t, decoded.Population)
}
