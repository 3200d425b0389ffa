package session

import (
	"errors"
	"time"

	"gscgateway/pkg/oauth2"
)

// CookieName is the cookie that carries the sealed artifact.
const CookieName = "gsc_credentials"

// DefaultTTL matches the cookie lifetime.
const DefaultTTL = time.Hour

var ErrMalformedSession = errors.New("malformed session")

// Artifact is everything needed to rebuild an authenticated API client for
// one browser session. It lives only inside the cookie.
type Artifact struct {
	Credentials oauth2.ClientCredentials `json:"credentials"`
	Tokens      oauth2.TokenSet          `json:"tokens"`
	IssuedAt    time.Time                `json:"issued_at"`
	ExpiresAt   time.Time                `json:"expires_at"`
}

func (a *Artifact) validate(now time.Time) error {
	switch {
	case a.Credentials.ClientID == "":
		return errors.New("credentials missing client_id")
	case a.Tokens.AccessToken == "":
		return errors.New("tokens missing access_token")
	case a.ExpiresAt.IsZero():
		return errors.New("missing expiry")
	case !now.Before(a.ExpiresAt):
		return errors.New("expired")
	}
	return nil
}
