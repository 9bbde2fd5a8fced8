package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const EnvProduction = "production"

// Config holds all configuration for the application
type Config struct {
	Environment string `env:"GO_ENV" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	JWTSecret   string `env:"JWT_SECRET"`

	// GeneratedJWTSecret is set when JWTSecret was not configured and a random one was created.
	GeneratedJWTSecret bool

	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:","`

	Store Store
	Email Email
	Queue Queue
}

// Store selects the persistence backend.
type Store struct {
	Driver      string `env:"STORE_DRIVER" env-default:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	SeedEvents  bool   `env:"SEED_EVENTS" env-default:"false"`
}

type Email struct {
	Provider    string `env:"EMAIL_PROVIDER" env-default:"noop"`
	FromAddress string `env:"EMAIL_FROM_ADDRESS" env-default:"no-reply@example.com"`
	FromName    string `env:"EMAIL_FROM_NAME" env-default:"Event Registration"`

	SESRegion             string `env:"SES_REGION" env-default:"us-east-1"`
	SESAccessKeyID        string `env:"SES_ACCESS_KEY_ID"`
	SESSecretAccessKey    string `env:"SES_SECRET_ACCESS_KEY"`
	SESInsecureSkipVerify bool   `env:"SES_INSECURE_SKIP_VERIFY" env-default:"false"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
}

// Queue sizes the background notification dispatcher.
type Queue struct {
	Workers     int           `env:"NOTIFY_WORKERS" env-default:"4"`
	Size        int           `env:"NOTIFY_QUEUE_SIZE" env-default:"256"`
	MaxAttempts int           `env:"NOTIFY_MAX_ATTEMPTS" env-default:"3"`
	SendTimeout time.Duration `env:"NOTIFY_SEND_TIMEOUT" env-default:"10s"`
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	if os.Getenv("GO_ENV") != EnvProduction {
		// In production .env might not exist and we rely on system environment variables
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Email.Provider = strings.ToLower(strings.TrimSpace(c.Email.Provider))

	switch c.Store.Driver {
	case "", "memory":
		c.Store.Driver = "memory"
	case "postgres", "sqlite":
		if c.Store.DatabaseURL == "" {
			if c.Store.Driver == "postgres" {
				return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
			}
			c.Store.DatabaseURL = "file:eventregistration.db?_pragma=busy_timeout(5000)"
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Queue.Workers < 1 {
		c.Queue.Workers = 1
	}
	if c.Queue.Size < 1 {
		c.Queue.Size = 1
	}
	if c.Queue.MaxAttempts < 1 {
		c.Queue.MaxAttempts = 1
	}

	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		c.JWTSecret = secret
		c.GeneratedJWTSecret = true
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
