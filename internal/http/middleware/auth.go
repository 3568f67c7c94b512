package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/devcamper-backend/internal/http/response"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/ctxutil"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/services"
)

// TokenCookie is the cookie login and register set alongside the JSON token.
const TokenCookie = "token"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// Protect requires a valid token and attaches the caller to the request context.
func (am *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.RespondError(c, apierr.Unauthorized("unauthorized", "Not authorized to access this route"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.RespondError(c, err)
			return
		}
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			response.RespondError(c, apierr.Unauthorized("unauthorized", "Not authorized to access this route"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authorize must run after Protect.
func (am *AuthMiddleware) Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil {
			response.RespondError(c, apierr.Unauthorized("unauthorized", "Not authorized to access this route"))
			return
		}
		if !slices.Contains(roles, rd.Role) {
			response.RespondError(c, apierr.Forbidden("forbidden", "User role %s is not authorized to access this route", rd.Role))
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" && cookie != "none" {
		return cookie
	}
	return ""
}
