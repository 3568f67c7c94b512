package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yungbote/devcamper-backend/internal/observability"
)

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(Metrics(m, "/healthcheck"))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/bootcamps/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{
		"/healthcheck",
		"/api/v1/bootcamps/5d713995b721c3bb38c1f5d0",
		"/api/v1/bootcamps/5d725a037b292f5f8ceff787",
		"/api/v1/nope/5d725a037b292f5f8ceff787",
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`dc_api_requests_total{method="GET",route="/api/v1/bootcamps/:id",status="200"} 2`,
		`dc_api_requests_total{method="GET",route="unmatched",status="404"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in exposition:\n%s", want, body)
		}
	}
	for _, unwanted := range []string{`route="/healthcheck"`, "5d725a037b292f5f8ceff787"} {
		if strings.Contains(body, unwanted) {
			t.Fatalf("unexpected %s in exposition", unwanted)
		}
	}
}

func TestMetricsNilIsPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status: want=418 got=%d", rec.Code)
	}
}
