/*
Package configs loads the application's configuration settings.

Values come from environment variables (optionally seeded from a .env file) and are
parsed into AppConfig with struct tags. LoadConfig then applies the cross-field rules:
port range, JWT secret outside development, and backend specific requirements.
*/
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// AI providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const devJWTSecret = "your_default_insecure_secret_key_change_me"

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL"`

	// Security Settings
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	JWTSecret      string   `env:"JWT_SECRET"`
	AdminEmails    []string `env:"ADMIN_EMAILS" envSeparator:"," envDefault:"admin@alumnilink.com"`

	// Entity Store Settings
	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/alumnilink.db"`
	DatabaseDSN string `env:"DATABASE_URL"`

	// Generative AI Settings
	AIProvider   string  `env:"AI_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string  `env:"GEMINI_API_KEY"`
	GeminiModel  string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	OpenAIAPIKey string  `env:"OPENAI_API_KEY"`
	OpenAIBase   string  `env:"OPENAI_BASE_URL"`
	OpenAIModel  string  `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AIRatePerSec float64 `env:"AI_RATE_PER_SEC" envDefault:"0.2"`
	AIBurst      int     `env:"AI_BURST" envDefault:"5"`

	// S3 Storage Settings (optional; avatar uploads are disabled without them)
	S3BucketName      string `env:"S3_BUCKET_NAME"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// UploadsEnabled reports whether every S3 setting is present.
func (c *AppConfig) UploadsEnabled() bool {
	return c.S3BucketName != "" && c.S3Endpoint != "" &&
		c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// AIAPIKey returns the key of the selected provider.
func (c *AppConfig) AIAPIKey() string {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS (case-insensitive).
func (c *AppConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	return email != "" && slices.ContainsFunc(c.AdminEmails, func(admin string) bool {
		return strings.ToLower(strings.TrimSpace(admin)) == email
	})
}

// LoadConfig loads .env when present, parses the environment and validates the result.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", c.Port, 1024, 65535)
	}

	c.AllowedOrigins = trimAll(c.AllowedOrigins)
	c.AdminEmails = trimAll(c.AdminEmails)

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", c.Environment)
		}
		c.JWTSecret = devJWTSecret
	}

	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty for the sqlite store driver")
		}
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_URL environment variable is required for the postgres store driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (expected %s, %s or %s)", c.StoreDriver, DriverSQLite, DriverPostgres, DriverMemory)
	}

	if c.AIProvider != ProviderGemini && c.AIProvider != ProviderOpenAI {
		return fmt.Errorf("unknown AI_PROVIDER %q (expected %s or %s)", c.AIProvider, ProviderGemini, ProviderOpenAI)
	}

	if c.AIRatePerSec <= 0 || c.AIBurst <= 0 {
		return errors.New("AI_RATE_PER_SEC and AI_BURST must be positive")
	}

	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
