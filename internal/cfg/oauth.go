package cfg

import (
	"errors"
	"time"
)

const minSessionSecretLength = 32

type Oauth2Config struct {
	CredentialsPaths []string
	CredentialsEnv   string
	Issuer           string
	StateCheck       bool
	StateTimeout     time.Duration
	SessionSecret    string
	SessionTTL       time.Duration
}

func (l *Loader) loadOAuth2() Oauth2Config {
	secret := l.requireEnv("SESSION_SECRET")
	if secret != "" && len(secret) < minSessionSecretLength {
		l.errs = append(l.errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}

	return Oauth2Config{
		CredentialsPaths: l.getEnvListWithDefault("GOOGLE_CREDENTIALS_PATHS",
			[]string{"client_secret.json", "backend/client_secret.json"}),
		CredentialsEnv: "GOOGLE_CREDENTIALS",
		Issuer:         l.getEnvWithDefault("OAUTH_ISSUER", ""),
		StateCheck:     l.getEnvBoolOrDefault("OAUTH_STATE_CHECK", true),
		StateTimeout:   l.getEnvDurationOrDefault("STATE_TIMEOUT", 10*time.Minute),
		SessionSecret:  secret,
		SessionTTL:     l.getEnvDurationOrDefault("SESSION_TTL", time.Hour),
	}
}

type SearchConsoleConfig struct {
	// Endpoint overrides the API base URL, empty means Google's default.
	Endpoint string
	Timeout  time.Duration
}

func (l *Loader) loadSearchConsole() SearchConsoleConfig {
	return SearchConsoleConfig{
		Endpoint: l.getEnvWithDefault("SEARCH_CONSOLE_ENDPOINT", ""),
		Timeout:  l.getEnvDurationOrDefault("UPSTREAM_TIMEOUT", 30*time.Second),
	}
}
