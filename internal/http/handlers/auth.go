package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/devcamper-backend/internal/http/middleware"
	"github.com/yungbote/devcamper-backend/internal/http/response"
	"github.com/yungbote/devcamper-backend/internal/services"
)

type AuthHandlerConfig struct {
	CookieTTL    time.Duration
	SecureCookie bool
}

type AuthHandler struct {
	authService services.AuthService
	cfg         AuthHandlerConfig
}

func NewAuthHandler(authService services.AuthService, cfg AuthHandlerConfig) *AuthHandler {
	if cfg.CookieTTL <= 0 {
		cfg.CookieTTL = authService.TokenTTL()
	}
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"omitempty,oneof=user publisher"`
	}
	if !bindJSON(c, &req) {
		return
	}
	_, token, err := ah.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	ah.sendToken(c, http.StatusOK, token)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	_, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	ah.sendToken(c, http.StatusOK, token)
}

// Logout overwrites the cookie; bearer tokens stay valid until they expire.
func (ah *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "none", 10, "/", "", ah.cfg.SecureCookie, true)
	response.RespondOK(c, gin.H{})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	user, err := ah.authService.Me(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

func (ah *AuthHandler) UpdateDetails(c *gin.Context) {
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email" binding:"omitempty,email"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, err := ah.authService.UpdateDetails(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

func (ah *AuthHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
	}
	if !bindJSON(c, &req) {
		return
	}
	_, token, err := ah.authService.UpdatePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	ah.sendToken(c, http.StatusOK, token)
}

func (ah *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if !bindJSON(c, &req) {
		return
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	base := scheme + "://" + c.Request.Host + "/api/v1/auth/resetpassword"
	if err := ah.authService.ForgotPassword(c.Request.Context(), req.Email, base); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Email sent")
}

func (ah *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	if !bindJSON(c, &req) {
		return
	}
	_, token, err := ah.authService.ResetPassword(c.Request.Context(), c.Param("resettoken"), req.Password)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	ah.sendToken(c, http.StatusOK, token)
}

func (ah *AuthHandler) sendToken(c *gin.Context, status int, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(ah.cfg.CookieTTL.Seconds()), "/", "", ah.cfg.SecureCookie, true)
	c.JSON(status, gin.H{"success": true, "token": token})
}
