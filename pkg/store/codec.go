package store

import (
	"encoding/json"
	"fmt"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// checkpointPayload is the serialized form of a Checkpoint. The selector
// treats members as opaque, but a checkpoint must know their concrete
// layout, so populations persist as AgentState values.
type checkpointPayload struct {
	RunID      string             `json:"run_id"`
	Generation int                `json:"generation"`
	Key        rng.Key            `json:"key"`
	Population []*core.AgentState `json:"population"`
}

// EncodeCheckpoint serializes a checkpoint to JSON. Every population
// member must be a *core.AgentState; other Member implementations have
// no stored representation.
func EncodeCheckpoint(checkpoint Checkpoint) ([]byte, error) {
	payload := checkpointPayload{
		RunID:      checkpoint.RunID,
		Generation: checkpoint.Generation,
		Key:        checkpoint.Key,
		Population: make([]*core.AgentState, len(checkpoint.Population)),
	}
	for i, member := range checkpoint.Population {
		state, ok := member.(*core.AgentState)
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "checkpoint members must be *core.AgentState"),
				errors.Fields{"index": i, "type": fmt.Sprintf("%T", member)},
			)
		}
		payload.Population[i] = state
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CheckpointFailed, "failed to encode checkpoint")
	}
	return data, nil
}

// DecodeCheckpoint restores a checkpoint encoded by EncodeCheckpoint.
// The returned population shares no memory with the stored bytes.
func DecodeCheckpoint(data []byte) (Checkpoint, error) {
	var payload checkpointPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Checkpoint{}, errors.Wrap(err, errors.CheckpointFailed, "failed to decode checkpoint")
	}

	checkpoint := Checkpoint{
		RunID:      payload.RunID,
		Generation: payload.Generation,
		Key:        payload.Key,
		Population: make([]core.Member, len(payload.Population)),
	}
	for i, state := range payload.Population {
		checkpoint.Population[i] = state
	}
	return checkpoint, nil
}
