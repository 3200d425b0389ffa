package auth

import (
	"context"
	"fmt"
	"strings"

	"gscgateway/internal/service/session"
	"gscgateway/pkg/logger"
	"gscgateway/pkg/oauth2"
)

type Service struct {
	oauth2Manager *oauth2.Manager
	codec         *session.Codec
	frontendURL   string
	logger        logger.Logger
}

func NewService(oauth2Manager *oauth2.Manager, codec *session.Codec, frontendURL string, l logger.Logger) *Service {
	return &Service{
		oauth2Manager: oauth2Manager,
		codec:         codec,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		logger:        l,
	}
}

// InitiateLogin generates the OAuth2 authorization URL
func (s *Service) InitiateLogin(ctx context.Context) (string, error) {
	return s.oauth2Manager.GetAuthURL(ctx)
}

// HandleCallback checks the state, exchanges the code and seals the result
// into a cookie value.
func (s *Service) HandleCallback(ctx context.Context, code, state string) (string, error) {
	res, err := s.oauth2Manager.HandleCallback(ctx, code, state)
	if err != nil {
		return "", err
	}

	value, err := s.codec.Encode(res.Credentials, res.Tokens)
	if err != nil {
		return "", fmt.Errorf("seal session: %w", err)
	}

	s.logger.Info(ctx, "session issued",
		logger.Field{Key: "has_refresh_token", Value: res.Tokens.RefreshToken != ""},
	)
	return value, nil
}

// Decode exposes the session codec so handlers can inspect a cookie.
func (s *Service) Decode(value string) (*session.Artifact, error) {
	return s.codec.Decode(value)
}

// CookieMaxAge is the cookie lifetime in seconds, matching the artifact expiry.
func (s *Service) CookieMaxAge() int {
	return int(s.codec.TTL().Seconds())
}

// DashboardURL is where the browser lands after a successful login.
func (s *Service) DashboardURL() string {
	return s.frontendURL + dashboardPath
}
