package auth

import (
	"time"

	"gscgateway/internal/service/session"
)

const (
	SessionCookieName = session.CookieName
	dashboardPath     = "/dashboard"
)

type CallbackRequest struct {
	Code  string `form:"code" binding:"max=2048"`
	State string `form:"state" binding:"max=256"`
	Error string `form:"error" binding:"max=256"`
}

type StatusResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}
