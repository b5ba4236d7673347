// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	StorageBackend   string
	DatabasePath     string
	RedisAddr        string
	RedisPassword    string
	StorageNamespace string
	LogLevel         string

	TaxRate               decimal.Decimal
	CartMaxQuantity       int
	NotificationRetention int
	GhostTTL              time.Duration

	RulesPath      string
	CatalogPath    string
	ContentFeedURL string
	HTTPAddr       string

	TelegramBotToken string
	AllowedUsers     []int64
}

// Load reads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		StorageBackend:   getenv("STORAGE_BACKEND", BackendSQLite),
		DatabasePath:     getenv("DATABASE_PATH", "./data/axees.db"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		StorageNamespace: getenv("STORAGE_NAMESPACE", "axees"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		RulesPath:        getenv("RULES_PATH", "./rules.yaml"),
		CatalogPath:      getenv("CATALOG_PATH", "./catalog.yaml"),
		ContentFeedURL:   os.Getenv("CONTENT_FEED_URL"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	switch cfg.StorageBackend {
	case BackendSQLite, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: want %s or %s", cfg.StorageBackend, BackendSQLite, BackendRedis)
	}

	var err error
	cfg.TaxRate, err = decimal.NewFromString(getenv("TAX_RATE", "0.08"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	if cfg.TaxRate.IsNegative() {
		return nil, fmt.Errorf("invalid TAX_RATE %s: must not be negative", cfg.TaxRate)
	}

	if cfg.CartMaxQuantity, err = nonNegativeInt("CART_MAX_QUANTITY", 99); err != nil {
		return nil, err
	}
	if cfg.NotificationRetention, err = nonNegativeInt("NOTIFICATION_RETENTION", 200); err != nil {
		return nil, err
	}

	cfg.GhostTTL, err = time.ParseDuration(getenv("GHOST_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid GHOST_TTL: %w", err)
	}
	if cfg.GhostTTL <= 0 {
		return nil, fmt.Errorf("invalid GHOST_TTL %s: must be positive", cfg.GhostTTL)
	}

	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, uid)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func nonNegativeInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %d: must not be negative", key, n)
	}
	return n, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
