package aggregates

import (
	"time"

	"github.com/yungbote/devcamper-backend/internal/observability"
)

// Hooks receives one event per recomputation. outcome is a RollupStatus on success
// or an error code on failure.
type Hooks interface {
	ObserveRecompute(rollup, outcome string, dur time.Duration)
}

type noopHooks struct{}

func (noopHooks) ObserveRecompute(string, string, time.Duration) {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports recomputations to metrics. A nil metrics disables reporting.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) ObserveRecompute(rollup, outcome string, dur time.Duration) {
	h.metrics.ObserveRollup(rollup, outcome, dur)
}
