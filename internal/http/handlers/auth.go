package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/courserate-backend/internal/http/response"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
	"github.com/yungbote/courserate-backend/internal/services"
)

type AuthHandler struct {
	log          *logger.Logger
	authService  services.AuthService
	cookieSecure bool
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		log:          log.With("handler", "AuthHandler"),
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

// POST /api/users/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// POST /api/users/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, issued, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	ah.setTokenCookie(c, issued.Token, expiresIn)
	response.RespondOK(c, gin.H{
		"token":      issued.Token,
		"expires_in": expiresIn,
		"user":       user,
	})
}

// POST /api/users/logout
// Tokens are stateless, so logout only clears the cookie.
func (ah *AuthHandler) Logout(c *gin.Context) {
	ah.setTokenCookie(c, "", -1)
	response.RespondOK(c, gin.H{"message": "logged out"})
}

func (ah *AuthHandler) setTokenCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(services.TokenCookieName, value, maxAge, "/", "", ah.cookieSecure, true)
}
