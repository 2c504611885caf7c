package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer string // Required: issuer claim for minted tokens

	DefaultAudience   string   // Optional: audience minted when none requested (default: tokend)
	AllowedAudiences  []string // Optional: comma-separated allow-list; empty means unrestricted
	AudienceValidated bool     // Optional: enable the audience allow-list check (default: true)

	RSABits       int    // Optional: RSA key size (default: 2048)
	KeyFile       string // Optional: path to a PEM private key; empty generates an ephemeral key
	MasterKeyPath string // Optional: path to master encryption key file (for encrypted key files)

	DatabaseFile string // Optional: path to SQLite database file (default: ./tokend.db)

	DefaultTTL      time.Duration // Optional: token lifetime when none requested (default: 1h)
	MaxTTL          time.Duration // Optional: upper bound on requested lifetimes (default: 24h)
	BulkRevokeLimit int           // Optional: max tokens per bulk revocation (default: 100)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("TOKEND_ISSUER", "tokend"),
		DefaultAudience:      getEnvOrDefault("TOKEND_DEFAULT_AUDIENCE", "tokend"),
		AudienceValidated:    getEnvBoolOrDefault("TOKEND_AUDIENCE_VALIDATION", true),
		RSABits:              getEnvIntOrDefault("TOKEND_RSA_BITS", 2048),
		KeyFile:              os.Getenv("TOKEND_KEY_FILE"),        // Optional
		MasterKeyPath:        os.Getenv("TOKEND_MASTER_KEY_PATH"), // Optional
		DatabaseFile:         getEnvOrDefault("TOKEND_DATABASE_FILE", "tokend.db"),
		DefaultTTL:           getEnvDurationOrDefault("TOKEND_DEFAULT_TTL", time.Hour),
		MaxTTL:               getEnvDurationOrDefault("TOKEND_MAX_TTL", 24*time.Hour),
		BulkRevokeLimit:      getEnvIntOrDefault("TOKEND_BULK_REVOKE_LIMIT", 100),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	// Comma-separated allow-list; blanks dropped.
	if allowed := os.Getenv("TOKEND_ALLOWED_AUDIENCES"); allowed != "" {
		for _, aud := range strings.Split(allowed, ",") {
			if aud = strings.TrimSpace(aud); aud != "" {
				cfg.AllowedAudiences = append(cfg.AllowedAudiences, aud)
			}
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
