package handlers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/devcamper-backend/internal/data/repos/query"
	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/http/response"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags ("career", "skill") to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("career", func(fl validator.FieldLevel) bool {
			return domain.IsValidCareer(fl.Field().String())
		})
		_ = v.RegisterValidation("skill", func(fl validator.FieldLevel) bool {
			return domain.IsValidSkill(fl.Field().String())
		})
	})
}

// bindJSON decodes the body into dst and renders a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, apierr.BadRequest("validation", "%s", describeBindError(err)))
		return false
	}
	return true
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("Please add a %s", field))
		case "email":
			msgs = append(msgs, "Please add a valid email")
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, ", ")
}

// paramID parses a uuid path parameter. Malformed ids render as 404, matching an
// unknown id.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, apierr.NotFound("not_found", "Resource not found"))
		return uuid.Nil, false
	}
	return id, true
}

// optionalParamID is paramID for routes mounted both nested and top level.
func optionalParamID(c *gin.Context, name string) (*uuid.UUID, bool) {
	if c.Param(name) == "" {
		return nil, true
	}
	id, ok := paramID(c, name)
	if !ok {
		return nil, false
	}
	return &id, true
}

func listQuery(c *gin.Context) (query.ListQuery, bool) {
	q, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_query", "%s", err.Error()))
		return query.ListQuery{}, false
	}
	return q, true
}
