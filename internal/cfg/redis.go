package cfg

// RedisConfig is optional; an empty Addr keeps OAuth state in memory.
type RedisConfig struct {
	Addr     string
	Password string
}

func (l *Loader) loadRedis() RedisConfig {
	return RedisConfig{
		Addr:     l.getEnvWithDefault("REDIS_ADDR", ""),
		Password: l.getEnvWithDefault("REDIS_PASSWORD", ""),
	}
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}
