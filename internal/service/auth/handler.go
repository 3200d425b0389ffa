package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gscgateway/internal/app/middleware"
	"gscgateway/pkg/logger"
	"gscgateway/pkg/oauth2"
)

type Handler struct {
	service       *Service
	logger        logger.Logger
	secureCookies bool
}

func NewHandler(service *Service, l logger.Logger, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		logger:        l,
		secureCookies: secureCookies,
	}
}

// LoginHandler redirects the browser to Google's consent screen
func (h *Handler) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authURL, err := h.service.InitiateLogin(c.Request.Context())
		if err != nil {
			h.logger.Error(c.Request.Context(), "login failed",
				logger.Field{Key: "operation", Value: "login"},
				logger.Err(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, authURL)
	}
}

// CallbackHandler completes the authorization code flow
func (h *Handler) CallbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req CallbackRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			h.logger.Warn(ctx, "malformed callback",
				logger.Field{Key: "operation", Value: "callback"},
				logger.Err(err),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid callback parameters"})
			return
		}

		if req.Error != "" {
			h.logger.Warn(ctx, "authorization denied by provider",
				logger.Field{Key: "operation", Value: "callback"},
				logger.Field{Key: "provider_error", Value: req.Error},
			)
			c.String(http.StatusInternalServerError, "Authentication failed")
			return
		}
		if req.Code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
			return
		}

		value, err := h.service.HandleCallback(ctx, req.Code, req.State)
		if err != nil {
			h.logger.Error(ctx, "authentication failed",
				logger.Field{Key: "operation", Value: "callback"},
				logger.Err(err),
			)
			switch {
			case errors.Is(err, oauth2.ErrInvalidState):
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
			case errors.Is(err, oauth2.ErrConfiguration):
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			default:
				c.String(http.StatusInternalServerError, "Authentication failed")
			}
			return
		}

		h.setSessionCookie(c, value, h.service.CookieMaxAge())
		c.Redirect(http.StatusFound, h.service.DashboardURL())
	}
}

// LogoutHandler drops the session cookie. Tokens are not revoked.
func (h *Handler) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.setSessionCookie(c, "", -1)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// StatusHandler reports whether the caller holds a usable session
func (h *Handler) StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, err := middleware.Authenticate(c, h.service)
		if err != nil {
			c.JSON(http.StatusOK, StatusResponse{Authenticated: false})
			return
		}

		expiresAt := artifact.ExpiresAt
		c.JSON(http.StatusOK, StatusResponse{Authenticated: true, ExpiresAt: &expiresAt})
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", "", h.secureCookies, true)
}
