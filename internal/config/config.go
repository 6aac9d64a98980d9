// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required for the postgres ledger store")
	ErrMissingBucket      = errors.New("LEDGER_S3_BUCKET environment variable is required for the s3 ledger store")
	ErrUnknownStore       = errors.New("unknown ledger store")
	ErrInvalidRateLimit   = errors.New("rate limit must be positive")
)

// StoreKind selects where ledger snapshots are written.
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
	StoreSQLite   StoreKind = "sqlite"
	StoreS3       StoreKind = "s3"
)

const (
	DefaultPort       = "5050"
	DefaultSQLitePath = "healthops.db"
	DefaultS3Region   = "us-east-1"
	DefaultS3Key      = "ledger/resources.json"
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Key       string
	PathStyle bool
}

type Config struct {
	Port string

	Store       StoreKind
	DatabaseURL string
	SQLitePath  string
	S3          S3Config

	// AdminTokenHash is a bcrypt hash. Empty leaves ledger writes open.
	AdminTokenHash string

	RateLimitRPS   float64
	RateLimitBurst int

	CORSOrigins []string
	SeedLedger  bool
}

// LoadFromEnv loads configuration from environment variables.
//
// Environment variables:
//   - PORT (default: 5050)
//   - LEDGER_STORE: memory, postgres, sqlite or s3 (default: memory)
//   - DATABASE_URL: required for postgres
//   - SQLITE_PATH (default: healthops.db)
//   - LEDGER_S3_BUCKET, LEDGER_S3_REGION, LEDGER_S3_ENDPOINT, LEDGER_S3_KEY, LEDGER_S3_PATH_STYLE
//   - ADMIN_TOKEN_HASH: bcrypt hash of the admin bearer token
//   - RATE_LIMIT_RPS / RATE_LIMIT_BURST (default: 20 / 40)
//   - CORS_ORIGINS: comma-separated allow-list
//   - SEED_LEDGER (default: true)
func LoadFromEnv() Config {
	cfg := Config{
		Port:           envOr("PORT", DefaultPort),
		Store:          StoreKind(strings.ToLower(envOr("LEDGER_STORE", string(StoreMemory)))),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     envOr("SQLITE_PATH", DefaultSQLitePath),
		AdminTokenHash: strings.TrimSpace(os.Getenv("ADMIN_TOKEN_HASH")),
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: int(envFloat("RATE_LIMIT_BURST", 40)),
		CORSOrigins:    DefaultCORSOrigins,
		SeedLedger:     envBool("SEED_LEDGER", true),
		S3: S3Config{
			Bucket:    strings.TrimSpace(os.Getenv("LEDGER_S3_BUCKET")),
			Region:    envOr("LEDGER_S3_REGION", DefaultS3Region),
			Endpoint:  strings.TrimSpace(os.Getenv("LEDGER_S3_ENDPOINT")),
			Key:       envOr("LEDGER_S3_KEY", DefaultS3Key),
			PathStyle: envBool("LEDGER_S3_PATH_STYLE", false),
		},
	}
	if origins := os.Getenv("CORS_ORIGINS"); strings.TrimSpace(origins) != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg
}

// Validate checks that the selected store has what it needs.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	case StoreS3:
		if c.S3.Bucket == "" {
			return ErrMissingBucket
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStore, c.Store)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}
