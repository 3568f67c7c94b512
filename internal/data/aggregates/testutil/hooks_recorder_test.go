package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestHooksRecorderKeepsOrder(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveRecompute("bootcamp.average_cost", "updated", time.Millisecond)
	h.ObserveRecompute("bootcamp.average_cost", "cleared", time.Millisecond)
	h.ObserveRecompute("bootcamp.average_rating", "read_failure", time.Millisecond)

	got := h.Outcomes()
	if len(got) != 3 || got[0] != "updated" || got[1] != "cleared" || got[2] != "read_failure" {
		t.Fatalf("unexpected outcomes: %v", got)
	}
	if h.Events[2].Rollup != "bootcamp.average_rating" {
		t.Fatalf("unexpected rollup: %+v", h.Events[2])
	}
}

func TestHooksRecorderConcurrent(t *testing.T) {
	h := &HooksRecorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ObserveRecompute("bootcamp.average_cost", "updated", 0)
		}()
	}
	wg.Wait()
	if n := len(h.Outcomes()); n != 20 {
		t.Fatalf("events: want=20 got=%d", n)
	}
}
