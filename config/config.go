package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL         string
	Port                string
	GoEnv               string
	LogLevel            string
	PublicBaseURL       string
	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	PickupTimezone      string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	MailFrom            string
	RedisAddr           string
	Auth0Domain         string
	Auth0Audience       string
	AWSRegion           string
	AWSS3Bucket         string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	ItemImageDir        string
	SessionKey          []byte
	CSRFKey             []byte
	CookieSecure        bool
	CORSAllowedOrigins  []string
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			slog.Info("No .env file found, using system environment variables")
		}
	} else {
		slog.Info("Loaded configuration", "file", envFile)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("SMTP_PORT must be a number: %w", err)
	}

	config := &Config{
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		Port:                getEnv("PORT", "8080"),
		GoEnv:               getEnv("GO_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		Currency:            strings.ToLower(getEnv("CURRENCY", "eur")),
		PickupTimezone:      getEnv("PICKUP_TIMEZONE", "UTC"),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            smtpPort,
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		MailFrom:            getEnv("MAIL_FROM", "no-reply@ppe-pickup.local"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		Auth0Domain:         getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:       getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:         getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		ItemImageDir:        getEnv("ITEM_IMAGE_DIR", "./uploads/items"),
		SessionKey:          loadKey("SESSION_KEY"),
		CSRFKey:             loadKey("CSRF_KEY"),
		CookieSecure:        getEnv("COOKIE_SECURE", "false") == "true",
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := time.LoadLocation(c.PickupTimezone); err != nil {
		return fmt.Errorf("PICKUP_TIMEZONE is invalid: %w", err)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// PaymentsConfigured reports whether a gateway credential is present.
func (c *Config) PaymentsConfigured() bool {
	return c.StripeSecretKey != ""
}

// MailConfigured reports whether outbound SMTP is available.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != ""
}

// ImageStorageConfigured reports whether item images live in S3.
func (c *Config) ImageStorageConfigured() bool {
	return c.AWSS3Bucket != ""
}

// AuthConfigured reports whether customer tokens can be validated.
func (c *Config) AuthConfigured() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// PickupLocation returns the location pickup times are entered in.
// Validate has already checked the name, so the fallback is never hit after Load.
func (c *Config) PickupLocation() *time.Location {
	loc, err := time.LoadLocation(c.PickupTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
// splitList parses a comma-separated value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadKey decodes a base64 secret of at least 32 bytes, or generates a random
// one so development servers still start. Sessions and CSRF tokens will not
// survive a restart with a generated key.
func loadKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn("Secret not set, generating a random key for this process", "key", name)
		return randomKey(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn("Secret is invalid or shorter than 32 bytes, generating a random key for this process", "key", name)
		return randomKey(32)
	}
	return decoded
}

func randomKey(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return b
}
