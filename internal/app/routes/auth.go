package routes

import (
	"gscgateway/internal/service/auth"

	"github.com/gin-gonic/gin"
)

func SetupAuth(r *gin.Engine, handler *auth.Handler) {
	auth := r.Group("/api/auth")
	{
		auth.GET("/login", handler.LoginHandler())
		auth.GET("/callback", handler.CallbackHandler())
		auth.GET("/status", handler.StatusHandler())
		auth.POST("/logout", handler.LogoutHandler())
	}
}
