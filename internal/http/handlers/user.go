package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/devcamper-backend/internal/http/response"
	"github.com/yungbote/devcamper-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type userRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     *string `json:"role" binding:"omitempty,oneof=user publisher admin"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

func (r userRequest) fields() services.UserFields {
	return services.UserFields{Name: r.Name, Email: r.Email, Role: r.Role, Password: r.Password}
}

func (uh *UserHandler) List(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	res, err := uh.userService.List(c.Request.Context(), q)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, len(res.Items), res.Pagination, res.Items)
}

func (uh *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := uh.userService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

func (uh *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := uh.userService.Create(c.Request.Context(), req.fields())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, user)
}

func (uh *UserHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := uh.userService.Update(c.Request.Context(), id, req.fields())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

func (uh *UserHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := uh.userService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{})
}
