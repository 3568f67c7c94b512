package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/http/response"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/services"
)

type BootcampHandler struct {
	bootcampService services.BootcampService
}

func NewBootcampHandler(bootcampService services.BootcampService) *BootcampHandler {
	return &BootcampHandler{bootcampService: bootcampService}
}

type bootcampRequest struct {
	Name          *string  `json:"name" binding:"omitempty,max=50"`
	Description   *string  `json:"description" binding:"omitempty,max=500"`
	Website       *string  `json:"website" binding:"omitempty,url"`
	Phone         *string  `json:"phone" binding:"omitempty,max=20"`
	Email         *string  `json:"email" binding:"omitempty,email"`
	Address       *string  `json:"address"`
	Careers       []string `json:"careers" binding:"omitempty,dive,career"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"job_assistance"`
	JobGuarantee  *bool    `json:"job_guarantee"`
	AcceptGi      *bool    `json:"accept_gi"`
}

func (r bootcampRequest) fields() services.BootcampFields {
	return services.BootcampFields{
		Name:          r.Name,
		Description:   r.Description,
		Website:       r.Website,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Careers:       r.Careers,
		Housing:       r.Housing,
		JobAssistance: r.JobAssistance,
		JobGuarantee:  r.JobGuarantee,
		AcceptGi:      r.AcceptGi,
	}
}

func (bh *BootcampHandler) List(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	res, err := bh.bootcampService.List(c.Request.Context(), q)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, len(res.Items), res.Pagination, res.Items)
}

func (bh *BootcampHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := bh.bootcampService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, b)
}

func (bh *BootcampHandler) Create(c *gin.Context) {
	var req bootcampRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := bh.bootcampService.Create(c.Request.Context(), req.fields())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, b)
}

func (bh *BootcampHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req bootcampRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := bh.bootcampService.Update(c.Request.Context(), id, req.fields())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, b)
}

func (bh *BootcampHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := bh.bootcampService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{})
}

type radiusHit struct {
	*domain.Bootcamp
	DistanceMiles float64 `json:"distance_miles"`
}

func (bh *BootcampHandler) WithinRadius(c *gin.Context) {
	miles, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		response.RespondError(c, apierr.BadRequest("validation", "Distance must be a number of miles"))
		return
	}
	hits, err := bh.bootcampService.WithinRadius(c.Request.Context(), c.Param("zipcode"), miles)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	out := make([]radiusHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, radiusHit{Bootcamp: h.Bootcamp, DistanceMiles: h.Miles})
	}
	response.RespondList(c, len(out), nil, out)
}

func (bh *BootcampHandler) UploadPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	upload := services.PhotoUpload{}
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			response.RespondError(c, apierr.Internal("upload_failed", err))
			return
		}
		defer f.Close()
		upload = services.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}
	name, err := bh.bootcampService.UploadPhoto(c.Request.Context(), id, upload)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, name)
}
