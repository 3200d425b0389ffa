package cfg

import (
	"strings"
	"time"
)

const callbackPath = "/api/auth/callback"

type Config struct {
	AppEnv          string
	LogFormat       string
	BackendURL      string
	FrontendURL     string
	HTTPServer      HTTPServerConfig
	OAuth2          Oauth2Config
	SearchConsole   SearchConsoleConfig
	Redis           RedisConfig
	Observability   OtelConfig
	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	l := NewLoader()

	cfg := &Config{
		AppEnv:          l.getEnvWithDefault("APP_ENV", "development"),
		LogFormat:       l.getEnvWithDefault("LOG_FORMAT", "json"),
		BackendURL:      trimURL(l.getEnvWithDefault("BACKEND_URL", "http://localhost:3000")),
		FrontendURL:     trimURL(l.getEnvWithDefault("FRONTEND_URL", "http://localhost:5173")),
		HTTPServer:      l.loadHTTPServer(),
		OAuth2:          l.loadOAuth2(),
		SearchConsole:   l.loadSearchConsole(),
		Redis:           l.loadRedis(),
		Observability:   l.loadOtel(),
		ShutdownTimeout: l.getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	if l.HasErrors() {
		return nil, l.Error()
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// RedirectURI is the OAuth callback registered with Google.
func (c *Config) RedirectURI() string {
	return c.BackendURL + callbackPath
}

// AllowedOrigins lists the browser origins allowed to call the API with
// credentials.
func (c *Config) AllowedOrigins() []string {
	return []string{c.FrontendURL, "http://localhost:5173", "http://localhost:3000"}
}

func trimURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}
