// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis (worker pool cache). Optional; an empty URL disables caching.
	RedisURL        string `koanf:"redis_url"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`

	// Ranking
	DefaultRadiusKm       float64 `koanf:"default_radius_km"`
	DefaultLimit          int     `koanf:"default_limit"`
	ScoringConcurrency    int     `koanf:"scoring_concurrency"`
	CalibrationPath       string  `koanf:"calibration_path"`
	RequestTimeoutSeconds int     `koanf:"request_timeout_seconds"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporterType string  `koanf:"tracing_exporter_type"`
	TracingOTLPEndpoint string  `koanf:"tracing_otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
	TracingInsecure     bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
	ErrInvalidRadius      = errors.New("DEFAULT_RADIUS_KM must be positive")
	ErrInvalidLimit       = errors.New("DEFAULT_LIMIT must be positive")
	ErrInvalidConcurrency = errors.New("SCORING_CONCURRENCY must be positive")
	ErrInvalidTimeout     = errors.New("REQUEST_TIMEOUT_SECONDS must be positive")
	ErrInvalidSampling    = errors.New("TRACING_SAMPLING_RATE must be between 0 and 1")
)

// Default values for non-secret configuration.
const (
	DefaultPort                  = 8080
	DefaultEnv                   = "development"
	DefaultCacheTTLSeconds       = 60
	DefaultRadiusKm              = 50.0
	DefaultLimit                 = 10
	DefaultScoringConcurrency    = 8
	DefaultRequestTimeoutSeconds = 5
	DefaultTracingExporterType   = "otlp-http"
	DefaultTracingSamplingRate   = 0.1
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try RENFORT_PORT first, then PORT
	port, portErr := getEnvIntOrDefaultMulti([]string{"RENFORT_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	cacheTTL, ttlErr := getEnvIntOrDefault("CACHE_TTL_SECONDS", k.Int("cache_ttl_seconds"), DefaultCacheTTLSeconds)
	if ttlErr != nil {
		loadErrs = append(loadErrs, ttlErr)
	}

	radius, radiusErr := getEnvFloatOrDefault("DEFAULT_RADIUS_KM", k.Float64("default_radius_km"), DefaultRadiusKm)
	if radiusErr != nil {
		loadErrs = append(loadErrs, radiusErr)
	}

	limit, limitErr := getEnvIntOrDefault("DEFAULT_LIMIT", k.Int("default_limit"), DefaultLimit)
	if limitErr != nil {
		loadErrs = append(loadErrs, limitErr)
	}

	concurrency, concErr := getEnvIntOrDefault("SCORING_CONCURRENCY", k.Int("scoring_concurrency"), DefaultScoringConcurrency)
	if concErr != nil {
		loadErrs = append(loadErrs, concErr)
	}

	timeout, timeoutErr := getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", k.Int("request_timeout_seconds"), DefaultRequestTimeoutSeconds)
	if timeoutErr != nil {
		loadErrs = append(loadErrs, timeoutErr)
	}

	sampling, samplingErr := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k.Float64("tracing_sampling_rate"), DefaultTracingSamplingRate)
	if samplingErr != nil {
		loadErrs = append(loadErrs, samplingErr)
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:                  port,
		Env:                   getEnvOrDefaultMulti([]string{"RENFORT_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:           getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:              getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		CacheTTLSeconds:       cacheTTL,
		DefaultRadiusKm:       radius,
		DefaultLimit:          limit,
		ScoringConcurrency:    concurrency,
		CalibrationPath:       getEnvOrKoanf("SCORING_CALIBRATION_PATH", k, "calibration_path"),
		RequestTimeoutSeconds: timeout,
		TracingEnabled:        getEnvBool("TRACING_ENABLED", k, "tracing_enabled", false),
		TracingExporterType:   getEnvOrDefault("TRACING_EXPORTER_TYPE", k.String("tracing_exporter_type"), DefaultTracingExporterType),
		TracingOTLPEndpoint:   getEnvOrKoanf("TRACING_OTLP_ENDPOINT", k, "tracing_otlp_endpoint"),
		TracingSamplingRate:   sampling,
		TracingInsecure:       getEnvBool("TRACING_INSECURE", k, "tracing_insecure", false),
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an
// integer; the default is returned alongside so the bad value reports exactly
// one error instead of cascading into range validation.
// Note: a zero value from a YAML file falls back to the default.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return defaultVal, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return defaultVal, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a
// float; the default is returned alongside so the bad value reports exactly one
// error instead of cascading into range validation.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return defaultVal, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvBool returns the environment variable as bool if set, otherwise the koanf value, or default.
func getEnvBool(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) bool {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	if k.Exists(koanfKey) {
		return k.Bool(koanfKey)
	}
	return defaultVal
}

// Validate checks that all required configuration values are present and
// that numeric settings are in range.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.DefaultRadiusKm <= 0 {
		errs = append(errs, ErrInvalidRadius)
	}
	if c.DefaultLimit <= 0 {
		errs = append(errs, ErrInvalidLimit)
	}
	if c.ScoringConcurrency <= 0 {
		errs = append(errs, ErrInvalidConcurrency)
	}
	if c.RequestTimeoutSeconds <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}
	if c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1 {
		errs = append(errs, ErrInvalidSampling)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                    fmt.Sprintf("%d", c.Port),
		"env":                     c.Env,
		"database_url":            maskDatabaseURL(c.DatabaseURL),
		"redis_url":               maskDatabaseURL(c.RedisURL),
		"cache_ttl_seconds":       fmt.Sprintf("%d", c.CacheTTLSeconds),
		"default_radius_km":       fmt.Sprintf("%g", c.DefaultRadiusKm),
		"default_limit":           fmt.Sprintf("%d", c.DefaultLimit),
		"scoring_concurrency":     fmt.Sprintf("%d", c.ScoringConcurrency),
		"calibration_path":        c.CalibrationPath,
		"request_timeout_seconds": fmt.Sprintf("%d", c.RequestTimeoutSeconds),
		"tracing_enabled":         fmt.Sprintf("%t", c.TracingEnabled),
		"tracing_exporter_type":   c.TracingExporterType,
		"tracing_otlp_endpoint":   c.TracingOTLPEndpoint,
		"tracing_sampling_rate":   fmt.Sprintf("%g", c.TracingSamplingRate),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskDatabaseURL masks the password in a connection URL.
// Supports postgres://, postgresql:// and redis:// schemes.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	// Look for password pattern: user:password@host
	// Simple approach: find :// and then mask between : and @
	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	// Reconstruct URL with masked password
	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
