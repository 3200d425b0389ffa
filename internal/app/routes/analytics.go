package routes

import (
	"gscgateway/internal/service/search"

	"github.com/gin-gonic/gin"
)

// SetupAnalytics mounts the Search Console endpoints behind gate, which
// resolves the session cookie.
func SetupAnalytics(r *gin.Engine, handler *search.Handler, gate gin.HandlerFunc) {
	api := r.Group("/api", gate)
	{
		api.GET("/sites", handler.SitesHandler())
		api.GET("/data", handler.DataHandler())
		api.GET("/urls", handler.URLsHandler())
		api.GET("/url-timeseries", handler.URLTimeSeriesHandler())
	}
}
