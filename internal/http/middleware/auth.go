package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/courserate-backend/internal/http/response"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
	"github.com/yungbote/courserate-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth rejects the request unless it carries a valid token and
// attaches the caller identity to the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, source := extractToken(c)
		if source == "" {
			response.AbortWithAPIError(c, services.ErrMissingToken)
			return
		}
		if tokenString == "" {
			response.AbortWithAPIError(c, services.ErrInvalidToken)
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString, source)
		if err != nil {
			am.log.Debug("auth rejected", "path", c.FullPath(), "source", source)
			response.AbortWithAPIError(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// extractToken prefers the cookie. A present cookie is used exclusively, even
// when it is empty and a bearer header is also sent. An empty source means no credential.
func extractToken(c *gin.Context) (string, string) {
	if cookie, err := c.Cookie(services.TokenCookieName); err == nil {
		return strings.TrimSpace(cookie), services.TokenSourceCookie
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:]), services.TokenSourceHeader
	}
	return "", ""
}
