package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port      string `env:"PORT" envDefault:"8080"`
	Mode      string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Database configuration
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"financial-mirror.db"`

	// Redis configuration (optional, enables the email cache and invite cooldown)
	RedisURL string `env:"REDIS_URL"`

	// Identity service (Supabase auth admin API)
	SupabaseURL            string `env:"SUPABASE_URL"`
	PublicSupabaseURL      string `env:"NEXT_PUBLIC_SUPABASE_URL"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`

	// Hotmart
	HotmartWebhookSecret string `env:"HOTMART_WEBHOOK_SECRET"`
	HotmartCheckoutURL   string `env:"HOTMART_CHECKOUT_URL"`

	// Admin routes are disabled while this is empty
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// User directory scan
	DirectoryPageSize int           `env:"DIRECTORY_PAGE_SIZE" envDefault:"200"`
	DirectoryMaxPages int           `env:"DIRECTORY_MAX_PAGES" envDefault:"20"`
	DirectoryTimeout  time.Duration `env:"DIRECTORY_TIMEOUT" envDefault:"10s"`
	DirectoryCacheTTL time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"24h"`

	// Validity applied when the provider omits the next charge date.
	// Annual plan assumption; change it together with the product offering.
	SubscriptionDefaultDays int `env:"SUBSCRIPTION_DEFAULT_DAYS" envDefault:"365"`

	// Brevo email configuration
	BrevoAPIKey    string        `env:"BREVO_API_KEY"`
	BrevoFromEmail string        `env:"BREVO_FROM_EMAIL"`
	BrevoFromName  string        `env:"BREVO_FROM_NAME" envDefault:"Obsidian"`
	AppName        string        `env:"APP_NAME" envDefault:"Obsidian"`
	SignupURL      string        `env:"SIGNUP_URL"`
	InviteCooldown time.Duration `env:"INVITE_COOLDOWN" envDefault:"24h"`
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	cfg, err := Load()
	if err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

// Load parses the process environment into a new Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.SupabaseURL == "" {
		cfg.SupabaseURL = cfg.PublicSupabaseURL
	}
	if cfg.DirectoryPageSize <= 0 {
		return nil, fmt.Errorf("DIRECTORY_PAGE_SIZE must be positive, got %d", cfg.DirectoryPageSize)
	}
	if cfg.DirectoryMaxPages <= 0 {
		return nil, fmt.Errorf("DIRECTORY_MAX_PAGES must be positive, got %d", cfg.DirectoryMaxPages)
	}
	if cfg.SubscriptionDefaultDays <= 0 {
		return nil, fmt.Errorf("SUBSCRIPTION_DEFAULT_DAYS must be positive, got %d", cfg.SubscriptionDefaultDays)
	}

	return cfg, nil
}

// DefaultValidity is the subscription window applied when a provider event has no expiry.
func (c *Config) DefaultValidity() time.Duration {
	return time.Duration(c.SubscriptionDefaultDays) * 24 * time.Hour
}

// IdentityConfigured reports whether the identity service credentials are present.
func (c *Config) IdentityConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}
