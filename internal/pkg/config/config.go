package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. It is loaded once at startup and
// passed explicitly into each component; nothing reads process environment
// after Load returns.
type Config struct {
	AppEnv       string `env:"APP_ENV" envDefault:"prod"`
	AppHost      string `env:"APP_HOST" envDefault:"localhost"`
	AppPort      string `env:"APP_PORT" envDefault:"3001"`
	PublicDomain string `env:"PUBLIC_DOMAIN" envDefault:"http://localhost:3001"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Cache    CacheConfig    `envPrefix:"CACHE_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	S3       S3Config       `envPrefix:"S3_"`
	Payments PaymentsConfig `envPrefix:"DODO_"`
}

type DatabaseConfig struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST" envDefault:"127.0.0.1"`
	Port     string `env:"PORT" envDefault:"3306"`
	Name     string `env:"NAME" envDefault:"notevault"`
}

type CacheConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"6379"`
}

type AuthConfig struct {
	// JWTSecret signs and verifies bearer tokens for all protected routes.
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
}

type S3Config struct {
	Region          string `env:"REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	EndpointURL     string `env:"ENDPOINT_URL"`
	Bucket          string `env:"BUCKET" envDefault:"notevault-attachments"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

type PaymentsConfig struct {
	APIBaseURL string `env:"API_BASE_URL" envDefault:"https://test.dodopayments.com"`
	APIKey     string `env:"API_KEY"`
	// WebhookSecret keys the HMAC verification of inbound webhook deliveries.
	WebhookSecret    string        `env:"WEBHOOK_SECRET"`
	DefaultProductID string        `env:"DEFAULT_PRODUCT_ID" envDefault:"premium_upgrade"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"20s"`
	// ReconcileTimeout bounds all store calls made while processing a single
	// webhook event so a slow dependency cannot pin request capacity.
	ReconcileTimeout time.Duration `env:"RECONCILE_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and parses the process environment into a
// Config. A missing .env file is not an error (Docker and CI pass real env).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DSN builds the MySQL data source name for GORM.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Addr returns the host:port of the cache server.
func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}
