package cfg

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// VaultSecretsPath is the path where Vault Agent writes secret files
const VaultSecretsPath = "/vault/secrets"

type Loader struct {
	errs []error
}

// NewLoader reads .env files into the environment before any lookups.
// Variables already set in the process environment take precedence.
func NewLoader() *Loader {
	loadDotEnv(".env")
	loadVaultSecrets(VaultSecretsPath)
	return &Loader{errs: make([]error, 0)}
}

func (l *Loader) HasErrors() bool {
	return len(l.errs) > 0
}

func (l *Loader) Error() error {
	if len(l.errs) > 0 {
		return errors.Join(l.errs...)
	}
	return nil
}

// loadDotEnv ignores a missing file, it is only present in local setups.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// loadVaultSecrets loads environment variables from Vault Agent output files
func loadVaultSecrets(dir string) {
	files, err := filepath.Glob(filepath.Join(dir, "*.env"))
	if err != nil || len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}

func (l *Loader) requireEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		l.errs = append(l.errs, errors.New("missing env: "+key))
	}
	return value
}

func (l *Loader) getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (l *Loader) getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (l *Loader) getEnvIntOrDefault(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		l.errs = append(l.errs, errors.New("invalid int for "+key+": "+value))
		return defaultValue
	}
	return intValue
}

func (l *Loader) getEnvFloat64OrDefault(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		l.errs = append(l.errs, errors.New("invalid float for "+key+": "+value))
		return defaultValue
	}
	return floatValue
}

func (l *Loader) getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		l.errs = append(l.errs, errors.New("invalid duration for "+key+": "+value))
		return defaultValue
	}
	return duration
}

func (l *Loader) getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		l.errs = append(l.errs, errors.New("invalid bool for "+key+": "+value))
		return defaultValue
	}
	return boolValue
}
