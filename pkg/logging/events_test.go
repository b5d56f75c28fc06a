package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestEventLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")

	log, err := NewEventLog(path, "run-xyz")
	require.NoError(t, err)

	require.NoError(t, log.EmitGeneration(0, map[string]interface{}{"best": 3.5}))
	require.NoError(t, log.EmitSelection(0, []int{1, 1}, []int{2, 3}))
	require.NoError(t, log.EmitCheckpoint(0, "/tmp/checkpoint.json"))
	require.NoError(t, log.EmitError(1, "trainer blew up", true))
	require.NoError(t, log.EmitRunEnd(1, map[string]interface{}{"generations": 2}))
	require.NoError(t, log.Close())

	events := readEvents(t, path)
	require.Len(t, events, 6)

	assert.Equal(t, EventRunStart, events[0].Type)
	assert.Equal(t, "run-xyz", events[0].RunID)

	assert.Equal(t, EventGeneration, events[1].Type)
	assert.EqualValues(t, 3.5, events[1].Data["best"])

	assert.Equal(t, EventSelection, events[2].Type)
	assert.Len(t, events[2].Data["sources"], 2)

	assert.Equal(t, EventCheckpoint, events[3].Type)
	assert.Equal(t, "/tmp/checkpoint.json", events[3].Data["path"])

	assert.Equal(t, EventError, events[4].Type)
	assert.Equal(t, true, events[4].Data["recoverable"])

	assert.Equal(t, EventRunEnd, events[5].Type)
	assert.Equal(t, 1, events[5].Generation)
}

func TestEventLogRunID(t *testing.T) {
	dir := t.TempDir()
	log, err := NewEventLog(filepath.Join(dir, "events.jsonl"), "run-1")
	require.NoError(t, err)
	defer log.Close()

	assert.Equal(t, "run-1", log.RunID())
}

func TestEventOutputRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")

	// Rotate after roughly one event's worth of bytes
	out, err := NewEventOutput(path, WithEventRotation(150, 2))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, out.Write(Event{
			Type:  EventGeneration,
			RunID: "run-rotate",
			Data:  map[string]interface{}{"generation": i},
		}))
	}
	require.NoError(t, out.Close())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)

	var rotated int
	for _, f := range files {
		if f.Name() != "events.jsonl" {
			rotated++
		}
	}
	assert.Greater(t, rotated, 0, "expected at least one rotated file")
	assert.LessOrEqual(t, rotated, 2, "rotation should respect the file cap")
}
