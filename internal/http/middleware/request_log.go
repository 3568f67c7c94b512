package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/ctxutil"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

// RequestLogger writes one entry per request once the handler chain returns.
// Paths listed in quiet are only logged when they fail.
func RequestLogger(log *logger.Logger, quiet ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		if _, ok := skip[route]; ok && status < 400 {
			return
		}

		entry := log.With(
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil && td.RequestID != "" {
			entry = entry.With("request_id", td.RequestID, "trace_id", td.TraceID)
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
			entry = entry.With("user_id", rd.UserID.String(), "role", rd.Role)
		}
		if last := c.Errors.Last(); last != nil {
			entry = entry.With("error_code", apierr.CodeOf(last.Err), "error", last.Err.Error())
		}

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
