package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string

	AdminAPIKey string

	LedgerGatewayURL     string
	LedgerTimeoutSeconds int

	BlobDir     string
	BlobBaseURL string

	PolicyBundlePath string

	VerifyURLBase string

	RateLimitRequests      int
	RateLimitWindowSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		AdminAPIKey:            os.Getenv("ADMIN_API_KEY"),
		LedgerGatewayURL:       os.Getenv("LEDGER_GATEWAY_URL"),
		LedgerTimeoutSeconds:   envIntDefault("LEDGER_TIMEOUT_SECONDS", 5),
		BlobDir:                envDefault("BLOB_DIR", "data/blobs"),
		BlobBaseURL:            envDefault("BLOB_BASE_URL", "/blobs"),
		PolicyBundlePath:       os.Getenv("POLICY_BUNDLE_PATH"),
		VerifyURLBase:          envDefault("VERIFY_URL_BASE", "http://localhost:8080/v1/verify"),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

// LedgerTimeout bounds every ledger read/write so a slow chain cannot stall
// issuance or verification indefinitely.
func (c Config) LedgerTimeout() time.Duration {
	secs := c.LedgerTimeoutSeconds
	if secs <= 0 {
		secs = 5
	}
	return time.Duration(secs) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	secs := c.RateLimitWindowSeconds
	if secs <= 0 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
