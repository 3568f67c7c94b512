package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/devcamper-backend/internal/http/response"
	"github.com/yungbote/devcamper-backend/internal/services"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type reviewRequest struct {
	Title  *string `json:"title" binding:"omitempty,max=100"`
	Text   *string `json:"text"`
	Rating *int    `json:"rating" binding:"omitempty,min=1,max=10"`
}

func (r reviewRequest) fields() services.ReviewFields {
	return services.ReviewFields{Title: r.Title, Text: r.Text, Rating: r.Rating}
}

// List serves both /reviews and /bootcamps/:id/reviews.
func (rh *ReviewHandler) List(c *gin.Context) {
	bootcampID, ok := optionalParamID(c, "id")
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	res, err := rh.reviewService.List(c.Request.Context(), q, bootcampID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, len(res.Items), res.Pagination, res.Items)
}

func (rh *ReviewHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	review, err := rh.reviewService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, review)
}

func (rh *ReviewHandler) Create(c *gin.Context) {
	bootcampID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := rh.reviewService.Create(c.Request.Context(), bootcampID, req.fields())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, review)
}

func (rh *ReviewHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := rh.reviewService.Update(c.Request.Context(), id, req.fields())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, review)
}

func (rh *ReviewHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rh.reviewService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{})
}
