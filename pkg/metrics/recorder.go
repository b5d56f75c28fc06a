package metrics

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"

	"github.com/BioGeek/qdax-go/pkg/errors"
)

var csvHeader = []string{
	"generation", "population_size", "best", "best_index",
	"worst", "worst_index", "mean", "median", "std_dev", "num_replaced",
}

// Recorder accumulates generation summaries over the course of a run.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	history []Summary
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one generation summary to the history.
func (r *Recorder) Record(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, s)
}

// Len reports the number of recorded generations.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// History returns a copy of the recorded summaries in record order.
func (r *Recorder) History() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Summary, len(r.history))
	copy(out, r.history)
	return out
}

// Last returns the most recent summary, or false if nothing was recorded.
func (r *Recorder) Last() (Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Summary{}, false
	}
	return r.history[len(r.history)-1], true
}

// BestGeneration returns the summary with the highest best return.
// Ties resolve to the earliest recorded generation.
func (r *Recorder) BestGeneration() (Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Summary{}, false
	}
	best := r.history[0]
	for _, s := range r.history[1:] {
		if s.Best > best.Best {
			best = s
		}
	}
	return best, true
}

// WriteCSV writes the recorded history as CSV with a header row. Floats are
// formatted with full precision so files round-trip exactly.
func (r *Recorder) WriteCSV(w io.Writer) error {
	history := r.History()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to write metrics csv header")
	}
	for _, s := range history {
		row := []string{
			strconv.Itoa(s.Generation),
			strconv.Itoa(s.PopulationSize),
			formatFloat(s.Best),
			strconv.Itoa(s.BestIndex),
			formatFloat(s.Worst),
			strconv.Itoa(s.WorstIndex),
			formatFloat(s.Mean),
			formatFloat(s.Median),
			formatFloat(s.StdDev),
			strconv.Itoa(s.NumReplaced),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, errors.Unknown, "failed to write metrics csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to flush metrics csv")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
