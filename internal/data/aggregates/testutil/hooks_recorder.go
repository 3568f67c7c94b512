package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/devcamper-backend/internal/data/aggregates"
)

// HooksRecorder keeps every recomputation event in arrival order.
type HooksRecorder struct {
	mu     sync.Mutex
	Events []RecomputeEvent
}

type RecomputeEvent struct {
	Rollup   string
	Outcome  string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveRecompute(rollup, outcome string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, RecomputeEvent{Rollup: rollup, Outcome: outcome, Duration: dur})
}

// Outcomes returns the recorded outcomes in order.
func (h *HooksRecorder) Outcomes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.Events))
	for _, ev := range h.Events {
		out = append(out, ev.Outcome)
	}
	return out
}
