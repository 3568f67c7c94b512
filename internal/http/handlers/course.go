package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/devcamper-backend/internal/http/response"
	"github.com/yungbote/devcamper-backend/internal/services"
)

type CourseHandler struct {
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

type courseRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	Weeks                *string    `json:"weeks"`
	Tuition              *float64   `json:"tuition" binding:"omitempty,gte=0"`
	MinimumSkill         *string    `json:"minimum_skill" binding:"omitempty,skill"`
	ScholarshipAvailable *bool      `json:"scholarship_available"`
	BootcampID           *uuid.UUID `json:"bootcamp_id"`
}

func (r courseRequest) fields() services.CourseFields {
	return services.CourseFields{
		Title:                r.Title,
		Description:          r.Description,
		Weeks:                r.Weeks,
		Tuition:              r.Tuition,
		MinimumSkill:         r.MinimumSkill,
		ScholarshipAvailable: r.ScholarshipAvailable,
		BootcampID:           r.BootcampID,
	}
}

// List serves both /courses and /bootcamps/:id/courses.
func (ch *CourseHandler) List(c *gin.Context) {
	bootcampID, ok := optionalParamID(c, "id")
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	res, err := ch.courseService.List(c.Request.Context(), q, bootcampID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, len(res.Items), res.Pagination, res.Items)
}

func (ch *CourseHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	course, err := ch.courseService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, course)
}

func (ch *CourseHandler) Create(c *gin.Context) {
	bootcampID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req courseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := ch.courseService.Create(c.Request.Context(), bootcampID, req.fields())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, course)
}

func (ch *CourseHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req courseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := ch.courseService.Update(c.Request.Context(), id, req.fields())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, course)
}

func (ch *CourseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ch.courseService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{})
}
