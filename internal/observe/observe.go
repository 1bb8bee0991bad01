// Package observe turns a single select-steps call into a structured log
// line and a set of Prometheus observations. A Recorder never changes
// what gets selected, only what gets reported about the selection that
// happened.
package observe

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder records the outcome of a single select-steps call: a log line
// stamped with a selection ID for end-to-end correlation, plus metrics
// (steps selected, errors by category, and duration).
type Recorder struct {
	Logger *slog.Logger
}

// NewRecorder creates a Recorder. A nil logger falls back to slog.Default().
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{Logger: logger}
}

// Begin starts recording a selection call and returns a function to finish
// it: call the returned func with the resulting step count (0 on failure)
// and any error once the call completes.
func (r *Recorder) Begin(targetNames []string) func(stepCount int, err error) {
	id := uuid.New().String()
	start := time.Now()
	r.Logger.Info("selection started", "selectionId", id, "targets", targetNames)

	return func(stepCount int, err error) {
		duration := time.Since(start)
		SelectionDuration.Observe(duration.Seconds())
		if err != nil {
			SelectionErrors.WithLabelValues(errorCategory(err)).Inc()
			r.Logger.Error("selection failed", "selectionId", id, "err", err, "durationMs", duration.Milliseconds())
			return
		}
		StepsSelected.Add(float64(stepCount))
		r.Logger.Info("selection completed", "selectionId", id, "steps", stepCount, "durationMs", duration.Milliseconds())
	}
}
