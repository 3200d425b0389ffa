package cfg

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "LOG_FORMAT", "BACKEND_URL", "FRONTEND_URL",
	"HTTP_PORT", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"HTTP_TRUSTED_PROXIES",
	"GOOGLE_CREDENTIALS_PATHS", "OAUTH_ISSUER", "OAUTH_STATE_CHECK", "STATE_TIMEOUT",
	"SESSION_SECRET", "SESSION_TTL", "SEARCH_CONSOLE_ENDPOINT", "UPSTREAM_TIMEOUT",
	"REDIS_ADDR", "REDIS_PASSWORD",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "OTEL_SAMPLER_RATIO",
	"SHUTDOWN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

const validSecret = "this-is-a-very-long-secret-key-that-is-at-least-32-characters-long"

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", validSecret)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", config.AppEnv)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "http://localhost:3000", config.BackendURL)
	assert.Equal(t, "http://localhost:5173", config.FrontendURL)
	assert.Equal(t, "3000", config.HTTPServer.Port)
	assert.Empty(t, config.HTTPServer.TrustedProxies)

	redirect, err := url.Parse(config.RedirectURI())
	require.NoError(t, err)
	assert.Equal(t, config.HTTPServer.Port, redirect.Port(), "callback must reach the listening server")
	assert.Equal(t, []string{"client_secret.json", "backend/client_secret.json"}, config.OAuth2.CredentialsPaths)
	assert.Equal(t, "GOOGLE_CREDENTIALS", config.OAuth2.CredentialsEnv)
	assert.True(t, config.OAuth2.StateCheck)
	assert.Equal(t, 10*time.Minute, config.OAuth2.StateTimeout)
	assert.Equal(t, time.Hour, config.OAuth2.SessionTTL)
	assert.Equal(t, 30*time.Second, config.SearchConsole.Timeout)
	assert.False(t, config.Redis.Enabled())
	assert.False(t, config.Observability.TracingEnabled())
	assert.Equal(t, 1.0, config.Observability.SamplerRatio)
	assert.False(t, config.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", validSecret)
	t.Setenv("APP_ENV", "production")
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("GOOGLE_CREDENTIALS_PATHS", "/etc/gsc/client.json, ./client_secret.json")
	t.Setenv("OAUTH_STATE_CHECK", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	t.Setenv("HTTP_TRUSTED_PROXIES", "10.0.0.1, 10.0.0.0/8")

	config, err := Load()
	require.NoError(t, err)

	assert.True(t, config.IsProduction())
	assert.Equal(t, "https://api.example.com/api/auth/callback", config.RedirectURI())
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:5173", "http://localhost:3000"}, config.AllowedOrigins())
	assert.Equal(t, []string{"/etc/gsc/client.json", "./client_secret.json"}, config.OAuth2.CredentialsPaths)
	assert.False(t, config.OAuth2.StateCheck)
	assert.True(t, config.Redis.Enabled())
	assert.Equal(t, 2.5, config.HTTPServer.RateLimitRPS)
	assert.Equal(t, 5*time.Second, config.SearchConsole.Timeout)
	assert.True(t, config.Observability.TracingEnabled())
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, config.HTTPServer.TrustedProxies)
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing env: SESSION_SECRET")
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "short")
	t.Setenv("STATE_TIMEOUT", "ten minutes")
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("OAUTH_STATE_CHECK", "maybe")
	t.Setenv("OTEL_SAMPLER_RATIO", "2")

	_, err := Load()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "SESSION_SECRET must be at least 32 characters")
	assert.Contains(t, msg, "invalid duration for STATE_TIMEOUT")
	assert.Contains(t, msg, "invalid int for RATE_LIMIT_BURST")
	assert.Contains(t, msg, "invalid bool for OAUTH_STATE_CHECK")
	assert.Contains(t, msg, "OTEL_SAMPLER_RATIO must be between 0 and 1")
}

func TestLoadVaultSecrets_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"),
		[]byte("GSC_VAULT_TEST_A=from-vault\nGSC_VAULT_TEST_B=from-vault\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"),
		[]byte("GSC_VAULT_TEST_C=nope\n"), 0o600))

	t.Setenv("GSC_VAULT_TEST_A", "from-env")
	t.Setenv("GSC_VAULT_TEST_B", "")
	os.Unsetenv("GSC_VAULT_TEST_B")
	t.Setenv("GSC_VAULT_TEST_C", "")
	os.Unsetenv("GSC_VAULT_TEST_C")

	loadVaultSecrets(dir)

	assert.Equal(t, "from-env", os.Getenv("GSC_VAULT_TEST_A"))
	assert.Equal(t, "from-vault", os.Getenv("GSC_VAULT_TEST_B"))
	assert.Empty(t, os.Getenv("GSC_VAULT_TEST_C"))
}
