package routes

import (
	"net/http"

	"gscgateway/internal/app/health"

	"github.com/gin-gonic/gin"
)

func SetupInfra(r *gin.Engine, hc *health.Checker, metricsHandler http.Handler) {
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
	r.GET("/healthz", hc.Liveness)
	r.GET("/readyz", hc.Readiness)
}
