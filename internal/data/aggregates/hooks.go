package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/courserate-backend/internal/observability"
)

// Hooks receives one ObserveOperation per write plus a signal per retry and conflict.
// ObserveRecompute reports how many reviews a statistics recompute scanned.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
	ObserveRecompute(reviewCount int, dur time.Duration)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}
func (noopHooks) ObserveRecompute(int, time.Duration)            {}

type metricsHooks struct {
	metrics *observability.Metrics
}

func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &metricsHooks{metrics: metrics}
}

func (h *metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *metricsHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
}

func (h *metricsHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(strings.TrimSpace(name))
}

func (h *metricsHooks) ObserveRecompute(reviewCount int, dur time.Duration) {
	h.metrics.ObserveCourseRecompute(reviewCount, dur)
}
