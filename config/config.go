package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	DatabaseURL          string
	JWTSecretKey         string
	ServerPort           int
	LogLevel             string
	OperatorPasswordHash string

	TotalQualifiers        int
	AutoQualifiersPerGroup int
	GroupMatchFormat       int
	KnockoutMatchFormat    int
	// BracketSeed, when set, shuffles the knockout field with this seed
	// before pairing. Unset keeps seed order.
	BracketSeed *int64

	ReconcileInterval  time.Duration
	CORSAllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// ArchiveEnabled reports whether all R2 settings are present.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// Load reads the configuration from the environment. A .env file, if present,
// is loaded first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:          dbURL,
		JWTSecretKey:         jwtKey,
		ServerPort:           port,
		LogLevel:             strings.ToLower(stringEnv("LOG_LEVEL", "info")),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		R2AccountID:          os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:      os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.TotalQualifiers, err = intEnv("TOTAL_QUALIFIERS", 8); err != nil {
		return nil, err
	}
	if cfg.AutoQualifiersPerGroup, err = intEnv("AUTO_QUALIFIERS_PER_GROUP", 2); err != nil {
		return nil, err
	}
	if cfg.GroupMatchFormat, err = intEnv("GROUP_MATCH_FORMAT", 3); err != nil {
		return nil, err
	}
	if cfg.KnockoutMatchFormat, err = intEnv("KNOCKOUT_MATCH_FORMAT", 5); err != nil {
		return nil, err
	}

	if cfg.TotalQualifiers < 2 || cfg.TotalQualifiers&(cfg.TotalQualifiers-1) != 0 {
		return nil, fmt.Errorf("TOTAL_QUALIFIERS must be a power of two >= 2, got %d", cfg.TotalQualifiers)
	}
	if cfg.AutoQualifiersPerGroup < 1 {
		return nil, fmt.Errorf("AUTO_QUALIFIERS_PER_GROUP must be positive, got %d", cfg.AutoQualifiersPerGroup)
	}
	for name, f := range map[string]int{"GROUP_MATCH_FORMAT": cfg.GroupMatchFormat, "KNOCKOUT_MATCH_FORMAT": cfg.KnockoutMatchFormat} {
		if f <= 0 || f%2 == 0 {
			return nil, fmt.Errorf("%s must be a positive odd number, got %d", name, f)
		}
	}

	if v := os.Getenv("BRACKET_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BRACKET_SEED environment variable: %w", err)
		}
		cfg.BracketSeed = &seed
	}

	interval := stringEnv("RECONCILE_INTERVAL", "30s")
	cfg.ReconcileInterval, err = time.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL environment variable: %w", err)
	}

	origins := stringEnv("CORS_ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}
