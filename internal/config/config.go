package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	CookieSecure bool          `yaml:"cookie_secure"`
	CORSOrigins  []string      `yaml:"cors_origins"`

	UploadDir    string `yaml:"upload_dir"`
	MaxLogoBytes int64  `yaml:"max_logo_bytes"`

	DefaultWebhookURL string        `yaml:"default_webhook_url"`
	WebhookTimeout    time.Duration `yaml:"webhook_timeout"`
	FeedCacheTTL      time.Duration `yaml:"feed_cache_ttl"`
	AnalyticsTimezone string        `yaml:"analytics_timezone"`

	BootstrapAdminUsername string `yaml:"bootstrap_admin_username"`
	BootstrapAdminPassword string `yaml:"bootstrap_admin_password"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// redis (optional chat feed cache)
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// rabbitMQ (optional logo cleanup queue)
	RabbitURL         string `yaml:"rabbit_url"`
	RabbitQueue       string `yaml:"rabbit_queue"`
	WorkerConcurrency int    `yaml:"worker_concurrency"`
}

// DefaultAdminPassword is the bootstrap password used when none is configured.
const DefaultAdminPassword = "admin"

// DefaultJWTSecret signs session tokens when JWT_SECRET is unset.
const DefaultJWTSecret = "dev-secret-change-me"

func Defaults() Config {
	return Config{
		HTTPAddr:               ":8080",
		DBDriver:               "sqlite",
		DBDSN:                  "data/dashboard.db",
		JWTSecret:              DefaultJWTSecret,
		SessionTTL:             24 * time.Hour,
		UploadDir:              "public/uploads",
		MaxLogoBytes:           1 << 20,
		WebhookTimeout:         10 * time.Second,
		FeedCacheTTL:           30 * time.Second,
		AnalyticsTimezone:      "UTC",
		BootstrapAdminUsername: "admin",
		BootstrapAdminPassword: DefaultAdminPassword,
		LogLevel:               "info",
		LogFormat:              "text",
		RabbitQueue:            "logo_cleanup",
		WorkerConcurrency:      2,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// DASHBOARD_CONFIG (if any), then environment variables. A .env file in the
// working directory is loaded into the environment first.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	// ${VAR} references are expanded before parsing.
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("DB_DRIVER", &cfg.DBDriver)
	str("DB_DSN", &cfg.DBDSN)
	str("JWT_SECRET", &cfg.JWTSecret)
	dur("SESSION_TTL", &cfg.SessionTTL)
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("COOKIE_SECURE: %w", err))
		} else {
			cfg.CookieSecure = b
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	str("UPLOAD_DIR", &cfg.UploadDir)
	if v := os.Getenv("MAX_LOGO_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_LOGO_BYTES: %w", err))
		} else {
			cfg.MaxLogoBytes = n
		}
	}
	str("DEFAULT_WEBHOOK_URL", &cfg.DefaultWebhookURL)
	dur("WEBHOOK_TIMEOUT", &cfg.WebhookTimeout)
	dur("FEED_CACHE_TTL", &cfg.FeedCacheTTL)
	str("ANALYTICS_TIMEZONE", &cfg.AnalyticsTimezone)
	str("BOOTSTRAP_ADMIN_USERNAME", &cfg.BootstrapAdminUsername)
	str("BOOTSTRAP_ADMIN_PASSWORD", &cfg.BootstrapAdminPassword)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	num("REDIS_DB", &cfg.RedisDB)
	str("RABBIT_URL", &cfg.RabbitURL)
	str("RABBIT_QUEUE", &cfg.RabbitQueue)
	num("WORKER_CONCURRENCY", &cfg.WorkerConcurrency)

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("db_driver must be sqlite or mysql, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("db_dsn is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.MaxLogoBytes <= 0 {
		return fmt.Errorf("max_logo_bytes must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("analytics_timezone: %w", err)
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = 2
	}
	if c.WorkerConcurrency > 50 {
		c.WorkerConcurrency = 50
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Location resolves AnalyticsTimezone, UTC when empty.
func (c *Config) Location() (*time.Location, error) {
	if c.AnalyticsTimezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.AnalyticsTimezone)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
