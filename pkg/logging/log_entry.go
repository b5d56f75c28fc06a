package logging

import "context"

// LogEntry represents a structured log record with fields particularly
// relevant to population-based training runs.
type LogEntry struct {
	// Standard fields
	Time     int64    `json:"time"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Function string   `json:"function"`

	// Run-specific fields
	RunID      string `json:"run_id,omitempty"`    // Identifier of the experiment run
	Generation int    `json:"generation"`          // Generation counter, -1 when unknown
	Latency    int64  `json:"latency_ms,omitempty"` // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{} `json:"fields,omitempty"`
}

type runIDKeyType struct{}
type generationKeyType struct{}

var (
	runIDKey      = runIDKeyType{}
	generationKey = generationKeyType{}
)

// WithRunID tags the context with the experiment run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID retrieves the run identifier from the context.
func GetRunID(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey).(string)
	return runID, ok
}

// WithGeneration tags the context with the current generation counter.
func WithGeneration(ctx context.Context, generation int) context.Context {
	return context.WithValue(ctx, generationKey, generation)
}

// GetGeneration retrieves the generation counter from the context.
func GetGeneration(ctx context.Context) (int, bool) {
	generation, ok := ctx.Value(generationKey).(int)
	return generation, ok
}
