package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveRollup("bootcamp.average_cost", "updated", time.Millisecond)
	m.IncGeocode("cache", "hit")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil metrics handler: want=503 got=%d", rec.Code)
	}
}

func TestObserveRollup(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRollup("bootcamp.average_cost", "updated", time.Millisecond)
	m.ObserveRollup("bootcamp.average_cost", "updated", 2*time.Millisecond)
	m.ObserveRollup("bootcamp.average_cost", "parent_not_found", time.Millisecond)

	if got := testutil.ToFloat64(m.rollupOutcomes.WithLabelValues("bootcamp.average_cost", "updated")); got != 2 {
		t.Fatalf("updated count: want=2 got=%v", got)
	}
	if got := testutil.ToFloat64(m.rollupOutcomes.WithLabelValues("bootcamp.average_cost", "parent_not_found")); got != 1 {
		t.Fatalf("parent_not_found count: want=1 got=%v", got)
	}
	if got := testutil.CollectAndCount(m.rollupLatency); got != 2 {
		t.Fatalf("latency series: want=2 got=%d", got)
	}
}

func TestHandlerExposesAPIMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveAPI("GET", "/api/v1/bootcamps", "200", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `dc_api_requests_total{method="GET",route="/api/v1/bootcamps",status="200"} 1`) {
		t.Fatalf("missing api counter in exposition:\n%s", rec.Body.String())
	}
}
