package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
)

func render(t *testing.T, fn func(c *gin.Context)) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	fn(c)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func TestRespondErrorUsesAPIError(t *testing.T) {
	code, body := render(t, func(c *gin.Context) {
		RespondError(c, apierr.NotFound("bootcamp_not_found", "Bootcamp not found with id of %s", "x"))
	})
	if code != http.StatusNotFound {
		t.Fatalf("status: got=%d", code)
	}
	if body["success"] != false {
		t.Fatalf("success flag: %v", body["success"])
	}
	e := body["error"].(map[string]any)
	if e["message"] != "Bootcamp not found with id of x" || e["code"] != "bootcamp_not_found" {
		t.Fatalf("unexpected error body: %v", e)
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	for _, err := range []error{
		errors.New("pq: connection refused"),
		apierr.Internal("internal", errors.New("dial tcp 10.0.0.1:5432")),
	} {
		code, body := render(t, func(c *gin.Context) { RespondError(c, err) })
		if code != http.StatusInternalServerError {
			t.Fatalf("status: got=%d", code)
		}
		if msg := body["error"].(map[string]any)["message"]; msg != "Server Error" {
			t.Fatalf("leaked message: %v", msg)
		}
	}
}

func TestRespondList(t *testing.T) {
	code, body := render(t, func(c *gin.Context) {
		RespondList(c, 2, map[string]any{"next": map[string]int{"page": 2, "limit": 2}}, []int{1, 2})
	})
	if code != http.StatusOK || body["success"] != true || body["count"] != float64(2) {
		t.Fatalf("unexpected list body: %d %v", code, body)
	}
}
