package oauth2

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ScopeWebmastersReadonly is the only scope requested from Google.
const ScopeWebmastersReadonly = "https://www.googleapis.com/auth/webmasters.readonly"

var (
	ErrConfiguration = errors.New("oauth2 client credentials not configured")
	ErrAuthExchange  = errors.New("authorization code exchange failed")
	ErrTokenRefresh  = errors.New("access token refresh failed")
)

// ClientCredentials identifies this application to the OAuth2 provider.
// Loaded once at startup and never mutated.
type ClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	AuthURI      string `json:"auth_uri,omitempty"`
	TokenURI     string `json:"token_uri,omitempty"`
}

// Validate checks the fields every operation needs.
func (c ClientCredentials) Validate() error {
	if c.ClientID == "" {
		return errors.New("client_id is empty")
	}
	if c.ClientSecret == "" {
		return errors.New("client_secret is empty")
	}
	return nil
}

// TokenSet is what the provider hands back from a code exchange.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Expired reports whether the access token is past its expiry, with leeway.
// A zero expiry never expires.
func (t TokenSet) Expired(now time.Time, leeway time.Duration) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(t.Expiry)
}

func (t TokenSet) authorization() string {
	if t.TokenType == "" || strings.EqualFold(t.TokenType, "bearer") {
		return "Bearer " + t.AccessToken
	}
	return t.TokenType + " " + t.AccessToken
}

func tokenSetFrom(tok *oauth2.Token) TokenSet {
	return TokenSet{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

// clientSecretFile mirrors the JSON downloaded from the Google Cloud console.
type clientSecretFile struct {
	Web       *clientSecretEntry `json:"web"`
	Installed *clientSecretEntry `json:"installed"`
}

type clientSecretEntry struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
}

// ParseClientSecret reads a client secret bundle. redirectURI, when set,
// replaces whatever the bundle lists; otherwise the first listed URI is used
// and may be empty.
func ParseClientSecret(data []byte, redirectURI string) (ClientCredentials, error) {
	var f clientSecretFile
	if err := json.Unmarshal(data, &f); err != nil {
		return ClientCredentials{}, fmt.Errorf("%w: parse client secret: %w", ErrConfiguration, err)
	}

	entry := f.Web
	if entry == nil {
		entry = f.Installed
	}
	if entry == nil {
		return ClientCredentials{}, fmt.Errorf("%w: neither \"web\" nor \"installed\" section present", ErrConfiguration)
	}

	creds := ClientCredentials{
		ClientID:     entry.ClientID,
		ClientSecret: entry.ClientSecret,
		RedirectURI:  redirectURI,
		AuthURI:      entry.AuthURI,
		TokenURI:     entry.TokenURI,
	}
	if creds.RedirectURI == "" && len(entry.RedirectURIs) > 0 {
		creds.RedirectURI = entry.RedirectURIs[0]
	}

	if err := creds.Validate(); err != nil {
		return ClientCredentials{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return creds, nil
}

// LoadClientCredentials resolves the client secret bundle from the first
// existing file in paths, then from the inline JSON in envVar. It returns the
// source that was used.
func LoadClientCredentials(paths []string, envVar, redirectURI string) (ClientCredentials, string, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return ClientCredentials{}, p, fmt.Errorf("%w: read %s: %w", ErrConfiguration, p, err)
		}
		creds, err := ParseClientSecret(data, redirectURI)
		return creds, p, err
	}

	if envVar != "" {
		if inline := os.Getenv(envVar); inline != "" {
			creds, err := ParseClientSecret([]byte(inline), redirectURI)
			return creds, "env:" + envVar, err
		}
	}

	return ClientCredentials{}, "", fmt.Errorf("%w: set %s or add one of %s",
		ErrConfiguration, envVar, strings.Join(paths, ", "))
}
