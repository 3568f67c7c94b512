package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(RequestLogger(log, "/healthcheck"))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/bootcamps/:id", func(c *gin.Context) {
		_ = c.Error(apierr.NotFound("bootcamp_not_found", "Bootcamp not found with id of %s", c.Param("id")))
		c.Status(http.StatusNotFound)
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/healthcheck", "/api/v1/bootcamps/abc", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (healthcheck is quiet)", len(entries))
	}

	rejected := entries[0]
	if rejected.Level != zapcore.WarnLevel {
		t.Fatalf("404 level = %v, want warn", rejected.Level)
	}
	fields := rejected.ContextMap()
	if fields["route"] != "/api/v1/bootcamps/:id" {
		t.Fatalf("route = %v", fields["route"])
	}
	if fields["error_code"] != "bootcamp_not_found" {
		t.Fatalf("error_code = %v", fields["error_code"])
	}

	failed := entries[1]
	if failed.Level != zapcore.ErrorLevel {
		t.Fatalf("500 level = %v, want error", failed.Level)
	}
	if failed.ContextMap()["error_code"] != "internal" {
		t.Fatalf("error_code = %v", failed.ContextMap()["error_code"])
	}
}
