package observe

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stepweave/internal/selerr"
)

var (
	// StepsSelected counts steps returned across all selections.
	StepsSelected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stepweave_steps_selected_total",
		Help: "Total number of steps returned by select-steps calls.",
	})

	// SelectionDuration observes select-steps call latency.
	SelectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stepweave_selection_duration_seconds",
		Help:    "Latency of select-steps calls.",
		Buckets: prometheus.DefBuckets,
	})

	// SelectionErrors counts select-steps failures, labelled by category.
	SelectionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stepweave_selection_errors_total",
		Help: "Total number of select-steps failures, labelled by error category.",
	}, []string{"category"})
)

func errorCategory(err error) string {
	switch {
	case errors.Is(err, selerr.ErrTargetNotFound):
		return "target_not_found"
	case errors.Is(err, selerr.ErrCycleDetected):
		return "cycle_detected"
	case errors.Is(err, selerr.ErrOutputConflict):
		return "output_conflict"
	case errors.Is(err, selerr.ErrConfigError):
		return "config_error"
	case errors.Is(err, selerr.ErrInvalidRegex):
		return "invalid_regex"
	default:
		return "internal"
	}
}
