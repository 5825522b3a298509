package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	LogLevel slog.Level
	HTTPAddr string
	BaseURL  string
	// PricingLocation defines the business calendar "today" is taken in.
	PricingLocation *time.Location
	CatalogFile     string
	CORSOrigins     []string

	StorageMode string
	MongoURI    string
	MongoDB     string
	PostgresDSN string
	RedisAddr   string
	RedisDB     int

	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaPaymentsTopic string
	// KafkaCheckoutTopic carries checkout session requests to the payment service.
	KafkaCheckoutTopic string
	KafkaGroupID       string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	IdempotencyTTL     time.Duration

	AdminPassword    string
	AdminTokenSecret string
	AdminTokenTTL    time.Duration

	PaymentsEnabled     bool
	PaymentsCheckoutURL string
	CheckoutTTL         time.Duration
	ExpirySchedule      string

	SendgridAPIKey string
	MailFrom       string

	MetricsCapacity  int
	MetricsReadLimit int
}

// IsDev reports whether the process runs on a developer machine.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "local"
}

// Load reads an optional .env file (ENV_FILE overrides the path) and parses the environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := loadDotenv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

func loadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", path, err)
}

// FromEnv parses configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:                 getEnv("APP_ENV", "dev"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		CatalogFile:         os.Getenv("CATALOG_FILE"),
		StorageMode:         strings.ToLower(getEnv("STORAGE_MODE", StorageMemory)),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDB:             getEnv("MONGO_DB", "riide"),
		PostgresDSN:         os.Getenv("POSTGRES_DSN"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		KafkaTopicPrefix:    getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaPaymentsTopic:  getEnv("KAFKA_PAYMENTS_TOPIC", "payments.events.v1"),
		KafkaCheckoutTopic:  getEnv("KAFKA_CHECKOUT_TOPIC", "payments.checkout_requests.v1"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "riide"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", "change-me"),
		AdminTokenSecret:    os.Getenv("ADMIN_TOKEN_SECRET"),
		PaymentsCheckoutURL: os.Getenv("PAYMENTS_CHECKOUT_URL"),
		ExpirySchedule:      getEnv("EXPIRY_SCHEDULE", "@every 5m"),
		SendgridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		MailFrom:            getEnv("MAIL_FROM", "reservations@riide.fr"),
	}
	cfg.BaseURL = strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost"+portSuffix(cfg.HTTPAddr)), "/")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))
	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	loc, err := time.LoadLocation(getEnv("PRICING_TZ", "Europe/Paris"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PRICING_TZ: %w", err)
	}
	cfg.PricingLocation = loc

	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.AdminTokenTTL, err = parseDurationEnv("ADMIN_TOKEN_TTL", 12*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutTTL, err = parseDurationEnv("CHECKOUT_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.PaymentsEnabled, err = parseBoolEnv("PAYMENTS_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.MetricsCapacity, err = parseIntEnv("METRICS_CAPACITY", 5000); err != nil {
		return Config{}, err
	}
	if cfg.MetricsReadLimit, err = parseIntEnv("METRICS_READ_LIMIT", 1000); err != nil {
		return Config{}, err
	}

	for _, raw := range splitList(getEnv("RETRY_BACKOFF", "1s,5s,30s")) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageMode {
	case StorageMemory:
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORAGE_MODE=%s", c.StorageMode)
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORAGE_MODE=%s", c.StorageMode)
		}
	default:
		return fmt.Errorf("invalid STORAGE_MODE %q", c.StorageMode)
	}
	if c.PaymentsEnabled {
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when PAYMENTS_ENABLED is set")
		}
		if c.PaymentsCheckoutURL == "" {
			return fmt.Errorf("PAYMENTS_CHECKOUT_URL is required when PAYMENTS_ENABLED is set")
		}
	}
	if !c.IsDev() && c.AdminTokenSecret == "" {
		return fmt.Errorf("ADMIN_TOKEN_SECRET is required outside dev")
	}
	if c.MetricsCapacity <= 0 {
		return fmt.Errorf("METRICS_CAPACITY must be positive")
	}
	if c.MetricsReadLimit <= 0 {
		return fmt.Errorf("METRICS_READ_LIMIT must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func portSuffix(addr string) string {
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		return addr[idx:]
	}
	return ""
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
