package logging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/BioGeek/qdax-go/pkg/core"

	"github.com/stretchr/testify/assert"
)

type MockOutput struct {
	entries []LogEntry
	mu      sync.Mutex
	closed  bool
}

func NewMockOutput() *MockOutput {
	return &MockOutput{
		entries: make([]LogEntry, 0),
	}
}

func (m *MockOutput) Write(entry LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("output is closed")
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockOutput) Sync() error {
	return nil
}

func (m *MockOutput) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockOutput) GetEntries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries
}

func TestNewLogger(t *testing.T) {
	mockOutput := NewMockOutput()
	defaultFields := map[string]interface{}{
		"service": "test",
		"version": "1.0",
	}

	cfg := Config{
		Severity:      INFO,
		Outputs:       []Output{mockOutput},
		SampleRate:    100,
		DefaultFields: defaultFields,
	}

	logger := NewLogger(cfg)

	assert.Equal(t, INFO, logger.severity)
	assert.Equal(t, uint32(100), logger.sampleRate)
	assert.Equal(t, defaultFields, logger.fields)
}

func TestGlobalLogger(t *testing.T) {
	// Test default logger creation
	logger1 := GetLogger()
	assert.NotNil(t, logger1)

	// Test setting custom logger
	mockOutput := NewMockOutput()
	customLogger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{mockOutput},
	})
	SetLogger(customLogger)

	logger2 := GetLogger()
	assert.Equal(t, customLogger, logger2)
}

func TestConcurrentLogging(t *testing.T) {
	mockOutput := NewMockOutput()
	logger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{mockOutput},
	})

	var wg sync.WaitGroup
	numGoroutines := 100
	messagesPerGoroutine := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(routineID int) {
			defer wg.Done()
			for j := 0; j < messagesPerGoroutine; j++ {
				logger.Info(context.Background(), "message from routine %d: %d", routineID, j)
			}
		}(i)
	}

	wg.Wait()

	entries := mockOutput.GetEntries()
	assert.Equal(t, numGoroutines*messagesPerGoroutine, len(entries))
}

func TestSeverityFiltering(t *testing.T) {
	mockOutput := NewMockOutput()
	logger := NewLogger(Config{
		Severity: WARN,
		Outputs:  []Output{mockOutput},
	})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	entries := mockOutput.GetEntries()
	assert.Len(t, entries, 2)
	assert.Equal(t, WARN, entries[0].Severity)
	assert.Equal(t, ERROR, entries[1].Severity)
}

func TestContextEnrichment(t *testing.T) {
	mockOutput := NewMockOutput()
	logger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{mockOutput},
	})

	t.Run("run ID and generation from context values", func(t *testing.T) {
		ctx := WithGeneration(WithRunID(context.Background(), "run-42"), 3)
		logger.Info(ctx, "hello")

		entries := mockOutput.GetEntries()
		lastEntry := entries[len(entries)-1]
		assert.Equal(t, "run-42", lastEntry.RunID)
		assert.Equal(t, 3, lastEntry.Generation)
	})

	t.Run("falls back to execution state", func(t *testing.T) {
		ctx := core.WithExecutionState(context.Background())
		state := core.GetExecutionState(ctx)
		state.SetRunID("run-from-state")
		state.SetGeneration(9)

		logger.Info(ctx, "hello")

		entries := mockOutput.GetEntries()
		lastEntry := entries[len(entries)-1]
		assert.Equal(t, "run-from-state", lastEntry.RunID)
		assert.Equal(t, 9, lastEntry.Generation)
	})

	t.Run("absent metadata leaves sentinel values", func(t *testing.T) {
		logger.Info(context.Background(), "hello")

		entries := mockOutput.GetEntries()
		lastEntry := entries[len(entries)-1]
		assert.Equal(t, "", lastEntry.RunID)
		assert.Equal(t, -1, lastEntry.Generation)
	})
}

func TestReplacementEventLogging(t *testing.T) {
	mockOutput := NewMockOutput()
	logger := NewLogger(Config{
		Severity: DEBUG,
		Outputs:  []Output{mockOutput},
	})

	ctx := context.Background()
	logger.ReplacementEvent(ctx, 5, []int{1, 1}, []int{2, 3})

	entries := mockOutput.GetEntries()
	assert.NotEmpty(t, entries)
	lastEntry := entries[len(entries)-1]
	assert.Contains(t, lastEntry.Message, "[1 1]")
	assert.Contains(t, lastEntry.Message, "[2 3]")

	// Gated away above DEBUG
	quiet := NewLogger(Config{
		Severity: INFO,
		Outputs:  []Output{mockOutput},
	})
	before := len(mockOutput.GetEntries())
	quiet.ReplacementEvent(ctx, 5, []int{1}, []int{2})
	assert.Equal(t, before, len(mockOutput.GetEntries()))
}

func TestFieldTruncation(t *testing.T) {
	longText := strings.Repeat("a", 200)
	fields := map[string]interface{}{
		"params":      longText,
		"hyperparams": longText,
	}

	formatted := formatFields(fields)
	assert.True(t, len(formatted) < len(longText)*2)
	assert.Contains(t, formatted, "...")
}
