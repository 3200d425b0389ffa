package cfg

import "time"

type HTTPServerConfig struct {
	// Port must match the one in BACKEND_URL, which Google redirects to.
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies may set X-Forwarded-For; empty trusts none.
	TrustedProxies []string
}

func (l *Loader) loadHTTPServer() HTTPServerConfig {
	return HTTPServerConfig{
		Port:           l.getEnvWithDefault("HTTP_PORT", "3000"),
		ReadTimeout:    l.getEnvDurationOrDefault("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   l.getEnvDurationOrDefault("HTTP_WRITE_TIMEOUT", 60*time.Second),
		RateLimitRPS:   l.getEnvFloat64OrDefault("RATE_LIMIT_RPS", 10),
		RateLimitBurst: l.getEnvIntOrDefault("RATE_LIMIT_BURST", 20),
		TrustedProxies: l.getEnvListWithDefault("HTTP_TRUSTED_PROXIES", nil),
	}
}
