package health

import (
	"context"
	"net/http"
	"time"

	"gscgateway/pkg/logger"
	"gscgateway/pkg/oauth2"

	"github.com/gin-gonic/gin"
)

type Checker struct {
	cache       CacheChecker
	credentials CredentialsChecker
	logger      logger.Logger
}

type CacheChecker interface {
	Ping(ctx context.Context) error
	Close() error
}

// CredentialsChecker reports whether OAuth client credentials are usable.
type CredentialsChecker interface {
	Credentials() (oauth2.ClientCredentials, error)
}

// NewChecker builds the probes. A nil dependency is skipped.
func NewChecker(cache CacheChecker, credentials CredentialsChecker, logger logger.Logger) *Checker {
	return &Checker{
		cache:       cache,
		credentials: credentials,
		logger:      logger,
	}
}

type Status struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *Checker) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, Status{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Checker) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["cache"] = "healthy"
		}
	}

	if h.credentials != nil {
		if _, err := h.credentials.Credentials(); err != nil {
			checks["credentials"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["credentials"] = "healthy"
		}
	}

	if healthy {
		c.JSON(http.StatusOK, Status{
			Status:    "ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		})
		return
	}

	h.logger.Warn(ctx, "readiness check failed", logger.Field{Key: "checks", Value: checks})
	c.JSON(http.StatusServiceUnavailable, Status{
		Status:    "not_ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
