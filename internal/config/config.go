// Package config loads the application configuration from the environment.
// A .env file is honored in development; every value has a default so the
// service starts with zero configuration against local Postgres and Redis.
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DevJWTSecret is the signing key applied when JWT_SECRET is unset. It is
// public knowledge and only acceptable outside production.
const DevJWTSecret = "confia-dev-secret"

// New reads the environment into a Config. A missing .env file is not an
// error; unparsable variables are, and so is running production without an
// explicit JWT secret.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on process environment")
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.IsProduction() && cfg.App.JWTSecret == DevJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	return &cfg, nil
}

type Config struct {
	App
	DB
	Redis
	Kafka
	Gateway
	Ledger
	Risk
	Score
	Transfer
}

type App struct {
	Port      string `env:"APP_PORT" envDefault:"3000"`
	Env       string `env:"ENV" envDefault:"development"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"confia-dev-secret"` // see DevJWTSecret
}

type DB struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name            string        `env:"DB_NAME" envDefault:"confia"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"30m"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Kafka struct {
	Brokers          string        `env:"KAFKA_BROKERS" envDefault:""`
	PublishTopics    string        `env:"KAFKA_PUBLISH_TOPICS" envDefault:"transfers.completed,fraud.alerts"`
	RetryMaxAttempts int           `env:"KAFKA_RETRY_MAX_ATTEMPTS" envDefault:"5"`
	RetryBaseDelay   time.Duration `env:"KAFKA_RETRY_BASE_DELAY" envDefault:"100ms"`
	RetryMaxDelay    time.Duration `env:"KAFKA_RETRY_MAX_DELAY" envDefault:"10s"`
	RetryJitter      bool          `env:"KAFKA_RETRY_JITTER" envDefault:"true"`
}

// Gateway configures the external verification provider used for identity
// checks and traditional bureau factors.
type Gateway struct {
	BaseURL string        `env:"VERIFICATION_BASE_URL" envDefault:"https://api.verification.local"`
	APIKey  string        `env:"VERIFICATION_API_KEY" envDefault:""`
	Timeout time.Duration `env:"VERIFICATION_TIMEOUT" envDefault:"2s"`
}

type Ledger struct {
	StartingBalance string `env:"LEDGER_STARTING_BALANCE" envDefault:"1000"`
	Currency        string `env:"LEDGER_CURRENCY" envDefault:"BRL"`
}

type Risk struct {
	ReviewAmountThreshold float64 `env:"RISK_REVIEW_AMOUNT" envDefault:"5000"`
	HighAmountThreshold   float64 `env:"RISK_HIGH_AMOUNT" envDefault:"10000"`
	AlertThreshold        int     `env:"RISK_ALERT_THRESHOLD" envDefault:"60"`
}

type Score struct {
	Seed           int64         `env:"SCORE_SEED" envDefault:"1"`
	GatewayTimeout time.Duration `env:"SCORE_GATEWAY_TIMEOUT" envDefault:"2s"`
}

type Transfer struct {
	StepUpTTL time.Duration `env:"TRANSFER_STEP_UP_TTL" envDefault:"5m"`
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
