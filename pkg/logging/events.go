package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType classifies structured run events.
type EventType string

const (
	EventRunStart   EventType = "run_start"
	EventGeneration EventType = "generation"
	EventSelection  EventType = "selection"
	EventCheckpoint EventType = "checkpoint"
	EventRunEnd     EventType = "run_end"
	EventError      EventType = "error"
)

// Event is one entry of the machine-readable run log. Events complement
// the human-oriented logger: tools replay them to reconstruct what a run
// did, generation by generation.
type Event struct {
	Type       EventType              `json:"type"`
	Timestamp  time.Time              `json:"timestamp"`
	RunID      string                 `json:"run_id"`
	Generation int                    `json:"generation,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// EventOutput appends events to a JSONL file with optional size-based
// rotation.
type EventOutput struct {
	mu         sync.Mutex
	file       fileWriter
	path       string
	rotateSize int64
	curSize    int64
	maxFiles   int
}

type EventOutputOption func(*EventOutput)

// WithEventRotation rotates the event file once it reaches maxSize
// bytes, keeping at most maxFiles rotated files.
func WithEventRotation(maxSize int64, maxFiles int) EventOutputOption {
	return func(o *EventOutput) {
		o.rotateSize = maxSize
		o.maxFiles = maxFiles
	}
}

func NewEventOutput(path string, opts ...EventOutputOption) (*EventOutput, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create event directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}

	info, err := file.Stat()
	var curSize int64 = 0
	if err == nil {
		curSize = info.Size()
	}

	output := &EventOutput{
		file:    file,
		path:    path,
		curSize: curSize,
	}

	for _, opt := range opts {
		opt(output)
	}

	return output, nil
}

func (o *EventOutput) Write(event Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	entrySize := int64(len(data))
	if o.rotateSize > 0 && (o.curSize+entrySize) >= o.rotateSize {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("failed to rotate event file: %w", err)
		}
		o.curSize = 0
	}

	n, err := o.file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	o.curSize += int64(n)
	return nil
}

func (o *EventOutput) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file.Sync()
}

func (o *EventOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file.Close()
}

func (o *EventOutput) rotate() error {
	if err := o.file.Close(); err != nil {
		return err
	}

	backupPath := fmt.Sprintf("%s.%s", o.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(o.path, backupPath); err != nil {
		return err
	}

	file, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	o.file = file
	o.curSize = 0

	if o.maxFiles > 0 {
		if err := o.cleanOldEventFiles(); err != nil {
			fmt.Fprintf(os.Stderr, "Error cleaning old event files: %v\n", err)
		}
	}

	return nil
}

func (o *EventOutput) cleanOldEventFiles() error {
	dir := filepath.Dir(o.path)
	base := filepath.Base(o.path)

	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var eventFiles []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		name := file.Name()
		if filepath.Base(o.path) != name && len(name) > len(base) && name[:len(base)] == base {
			eventFiles = append(eventFiles, filepath.Join(dir, name))
		}
	}

	if len(eventFiles) > o.maxFiles {
		for i := 0; i < len(eventFiles)-o.maxFiles; i++ {
			if err := os.Remove(eventFiles[i]); err != nil {
				return err
			}
		}
	}

	return nil
}

// EventLog records the structured events of one run.
type EventLog struct {
	output    *EventOutput
	runID     string
	startTime time.Time
	mu        sync.Mutex
}

// NewEventLog opens an event log for the given run at path and emits the
// run_start event.
func NewEventLog(path, runID string, opts ...EventOutputOption) (*EventLog, error) {
	output, err := NewEventOutput(path, opts...)
	if err != nil {
		return nil, err
	}

	log := &EventLog{
		output:    output,
		runID:     runID,
		startTime: time.Now(),
	}

	if err := log.emitRunStart(nil); err != nil {
		output.Close()
		return nil, err
	}

	return log, nil
}

func (l *EventLog) RunID() string {
	return l.runID
}

func (l *EventLog) emitRunStart(metadata map[string]interface{}) error {
	data := map[string]interface{}{
		"start_time": l.startTime,
	}
	for k, v := range metadata {
		data[k] = v
	}

	return l.output.Write(Event{
		Type:      EventRunStart,
		Timestamp: l.startTime,
		RunID:     l.runID,
		Data:      data,
	})
}

// EmitGeneration records the summary of one finished generation.
func (l *EventLog) EmitGeneration(generation int, summary map[string]interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.output.Write(Event{
		Type:       EventGeneration,
		Timestamp:  time.Now(),
		RunID:      l.runID,
		Generation: generation,
		Data:       summary,
	})
}

// EmitSelection records which members were replaced by which sources in
// one selection step. sources and targets are index-aligned.
func (l *EventLog) EmitSelection(generation int, sources, targets []int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.output.Write(Event{
		Type:       EventSelection,
		Timestamp:  time.Now(),
		RunID:      l.runID,
		Generation: generation,
		Data: map[string]interface{}{
			"sources": sources,
			"targets": targets,
		},
	})
}

// EmitCheckpoint records that a population snapshot was written.
func (l *EventLog) EmitCheckpoint(generation int, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.output.Write(Event{
		Type:       EventCheckpoint,
		Timestamp:  time.Now(),
		RunID:      l.runID,
		Generation: generation,
		Data: map[string]interface{}{
			"path": path,
		},
	})
}

// EmitRunEnd records the end of the run with its closing statistics.
func (l *EventLog) EmitRunEnd(generation int, summary map[string]interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := map[string]interface{}{
		"duration_ms": time.Since(l.startTime).Milliseconds(),
	}
	for k, v := range summary {
		data[k] = v
	}

	return l.output.Write(Event{
		Type:       EventRunEnd,
		Timestamp:  time.Now(),
		RunID:      l.runID,
		Generation: generation,
		Data:       data,
	})
}

// EmitError records a failure during the run.
func (l *EventLog) EmitError(generation int, message string, recoverable bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.output.Write(Event{
		Type:       EventError,
		Timestamp:  time.Now(),
		RunID:      l.runID,
		Generation: generation,
		Data: map[string]interface{}{
			"message":     message,
			"recoverable": recoverable,
		},
	})
}

func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.output.Flush(); err != nil {
		return err
	}
	return l.output.Close()
}
