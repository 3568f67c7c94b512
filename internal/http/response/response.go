package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type DataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ListEnvelope struct {
	Success    bool `json:"success"`
	Count      int  `json:"count"`
	Pagination any  `json:"pagination"`
	Data       any  `json:"data"`
}

// RespondError renders err with the status and code carried by apierr. Errors without
// one are reported as a bare 500 so internal detail never reaches the client.
func RespondError(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	code := apierr.CodeOf(err)
	msg := "Server Error"
	if err != nil {
		_ = c.Error(err)
	}
	if _, ok := apierr.As(err); ok && !(status >= http.StatusInternalServerError && code == "internal") {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondStatus is RespondError for handler-level failures that never reached a service.
func RespondStatus(c *gin.Context, status int, code string, err error) {
	RespondError(c, apierr.New(status, code, err))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, DataEnvelope{Success: true, Data: payload})
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, DataEnvelope{Success: true, Data: payload})
}

func RespondList(c *gin.Context, count int, pagination any, payload any) {
	c.JSON(http.StatusOK, ListEnvelope{Success: true, Count: count, Pagination: pagination, Data: payload})
}
