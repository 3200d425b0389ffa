package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gscgateway/internal/cfg"
	"gscgateway/internal/service/session"
	"gscgateway/pkg/cache"
	"gscgateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCloseableCache struct {
	cache.Cache
	closeCalled bool
	closeError  error
}

func (m *mockCloseableCache) Close() error {
	m.closeCalled = true
	return m.closeError
}

// googleStub plays both the token endpoint and the Search Console API.
func googleStub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/webmasters/v3/sites", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"siteEntry":[{"siteUrl":"sc-domain:example.com","permissionLevel":"siteOwner"}]}`)
	})
	mux.HandleFunc("/webmasters/v3/sites/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/searchAnalytics/query") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"rows":[
			{"keys":["2024-01-02"],"clicks":3,"impressions":30,"ctr":0.1,"position":4.5},
			{"keys":["2024-01-01"],"clicks":1,"impressions":10,"ctr":0.1,"position":7}
		]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, stub *httptest.Server) *cfg.Config {
	t.Helper()

	secret := `{"web":{"client_id":"cid","client_secret":"cs","auth_uri":"` + stub.URL + `/auth","token_uri":"` + stub.URL + `/token"}}`
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path, []byte(secret), 0o600))

	return &cfg.Config{
		AppEnv:      "test",
		LogFormat:   "json",
		BackendURL:  "http://localhost:3000",
		FrontendURL: "http://localhost:5173",
		HTTPServer: cfg.HTTPServerConfig{
			Port:         "0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		OAuth2: cfg.Oauth2Config{
			CredentialsPaths: []string{path},
			CredentialsEnv:   "GSCGATEWAY_TEST_CREDENTIALS",
			StateCheck:       true,
			StateTimeout:     time.Minute,
			SessionSecret:    strings.Repeat("s", 32),
			SessionTTL:       time.Hour,
		},
		SearchConsole: cfg.SearchConsoleConfig{
			Endpoint: stub.URL + "/",
			Timeout:  5 * time.Second,
		},
		Observability: cfg.OtelConfig{
			ServiceName:  "gscgateway-test",
			SamplerRatio: 1,
		},
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, opts ...func(*cfg.Config)) *Server {
	t.Helper()

	s, err := buildTestServer(t, opts...)
	require.NoError(t, err)
	return s
}

func buildTestServer(t *testing.T, opts ...func(*cfg.Config)) (*Server, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config := testConfig(t, googleStub(t))
	for _, opt := range opts {
		opt(config)
	}

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Infra.Close(context.Background()) })

	return NewServer(provider)
}

func withRateLimit(rps float64, burst int, proxies ...string) func(*cfg.Config) {
	return func(c *cfg.Config) {
		c.HTTPServer.RateLimitRPS = rps
		c.HTTPServer.RateLimitBurst = burst
		c.HTTPServer.TrustedProxies = proxies
	}
}

func doFrom(s *Server, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func do(s *Server, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", session.CookieName)
	return nil
}

func login(t *testing.T, s *Server) *http.Cookie {
	t.Helper()

	w := do(s, http.MethodGet, "/api/auth/login")
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	w = do(s, http.MethodGet, "/api/auth/callback?code=good-code&state="+url.QueryEscape(state))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:5173/dashboard", w.Header().Get("Location"))

	return sessionCookie(t, w)
}

func TestServer_LoginFlow(t *testing.T) {
	s := newTestServer(t)

	cookie := login(t, s)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	w := do(s, http.MethodGet, "/api/auth/status", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	w = do(s, http.MethodGet, "/api/sites", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var sites []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sites))
	require.Len(t, sites, 1)
	assert.Equal(t, "sc-domain:example.com", sites[0]["siteUrl"])

	w = do(s, http.MethodGet, "/api/data?site_url="+url.QueryEscape("sc-domain:example.com"), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-01", rows[0]["date"])
}

func TestServer_CallbackReplayRejected(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/api/auth/login")
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := url.QueryEscape(loc.Query().Get("state"))

	w = do(s, http.MethodGet, "/api/auth/callback?code=good-code&state="+state)
	require.Equal(t, http.StatusFound, w.Code)

	w = do(s, http.MethodGet, "/api/auth/callback?code=good-code&state="+state)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_AnalyticsRequireSession(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/api/sites")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authenticated")

	w = do(s, http.MethodGet, "/api/sites", &http.Cookie{Name: session.CookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	w = do(s, http.MethodGet, "/api/auth/status")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestServer_InfraRoutes(t *testing.T) {
	s := newTestServer(t)

	cookie := login(t, s)
	require.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/sites", cookie).Code)

	w := do(s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(s, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"credentials":"healthy"`)

	w = do(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gsc_upstream_requests_total{operation="sites.list",status="success"} 1`)
}

func TestServer_RateLimitIgnoresForwardedForByDefault(t *testing.T) {
	s := newTestServer(t, withRateLimit(0.001, 1))

	assert.Equal(t, http.StatusOK, doFrom(s, "198.51.100.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doFrom(s, "198.51.100.2").Code)
}

func TestServer_RateLimitHonoursTrustedProxy(t *testing.T) {
	s := newTestServer(t, withRateLimit(0.001, 1, "192.0.2.1"))

	assert.Equal(t, http.StatusOK, doFrom(s, "198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, doFrom(s, "198.51.100.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, doFrom(s, "198.51.100.2").Code)
}

func TestNewServer_InvalidTrustedProxy(t *testing.T) {
	_, err := buildTestServer(t, withRateLimit(0, 0, "not-an-ip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trusted proxies")
}

func TestServer_Shutdown(t *testing.T) {
	s := &Server{
		logger:     logger.NewLoggerWithWriter("test", io.Discard),
		httpServer: &http.Server{Addr: "127.0.0.1:0"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, s.Shutdown(ctx))
}

func TestInfrastructure_Close(t *testing.T) {
	quiet := logger.NewLoggerWithWriter("test", io.Discard)

	t.Run("closes cache and observability", func(t *testing.T) {
		mockCache := &mockCloseableCache{}
		shutdownCalled := false

		infra := &Infrastructure{
			Logger: quiet,
			Cache:  mockCache,
			shutdownOTel: func(context.Context) error {
				shutdownCalled = true
				return nil
			},
		}

		assert.NoError(t, infra.Close(context.Background()))
		assert.True(t, mockCache.closeCalled)
		assert.True(t, shutdownCalled)
	})

	t.Run("aggregates errors", func(t *testing.T) {
		infra := &Infrastructure{
			Logger: quiet,
			Cache:  &mockCloseableCache{closeError: errors.New("cache error")},
			shutdownOTel: func(context.Context) error {
				return errors.New("observability error")
			},
		}

		err := infra.Close(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache shutdown")
		assert.Contains(t, err.Error(), "observability shutdown")
	})

	t.Run("handles nil resources", func(t *testing.T) {
		infra := &Infrastructure{Logger: quiet}
		assert.NoError(t, infra.Close(context.Background()))
	})
}
