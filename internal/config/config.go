package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/numbersff/internal/database"
	"github.com/Alias1177/numbersff/internal/predict"
	"github.com/Alias1177/numbersff/internal/scoring"
)

// Config holds all application configuration
type Config struct {
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"numbersff"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"numbersff.db"`

	Port        string   `env:"PORT" envDefault:"8000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`
	RedisURL    string   `env:"REDIS_URL"` // empty disables the response cache

	ReleasesURL    string `env:"NFLVERSE_RELEASES_URL"`
	GamesURL       string `env:"NFLVERSE_GAMES_URL"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"120"` // seconds
	RequestsPerSec int    `env:"REQUESTS_PER_SEC" envDefault:"5"`
	MaxRetries     int    `env:"MAX_RETRIES" envDefault:"4"`

	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	RulesetsFile    string `env:"RULESETS_FILE"` // empty uses the built-in rulesets
	AccuracyRuleset string `env:"ACCURACY_RULESET" envDefault:"half_ppr"`
	PredictWindow   int    `env:"PREDICTION_WINDOW" envDefault:"4"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`
	NotifyRetries    int    `env:"NOTIFY_RETRIES" envDefault:"3"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.DBDriver = getEnvWithDefault("DB_DRIVER", database.DriverPostgres)
	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "numbersff")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")
	cfg.SQLitePath = getEnvWithDefault("SQLITE_PATH", "numbersff.db")

	cfg.Port = getEnvWithDefault("PORT", "8000")
	cfg.CORSOrigins = getEnvListWithDefault("CORS_ORIGINS", []string{"http://localhost:5173"})
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.ReleasesURL = os.Getenv("NFLVERSE_RELEASES_URL")
	cfg.GamesURL = os.Getenv("NFLVERSE_GAMES_URL")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 120)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", 4)

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RulesetsFile = os.Getenv("RULESETS_FILE")
	cfg.AccuracyRuleset = getEnvWithDefault("ACCURACY_RULESET", scoring.RulesetHalfPPR)
	cfg.PredictWindow = getEnvIntWithDefault("PREDICTION_WINDOW", predict.DefaultWindow)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.NotifyRetries = getEnvIntWithDefault("NOTIFY_RETRIES", 3)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the services cannot start with
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case database.DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres"))
		}
	case database.DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.RequestsPerSec <= 0 {
		errs = append(errs, errors.New("REQUESTS_PER_SEC must be positive"))
	}
	if c.PredictWindow <= 0 {
		errs = append(errs, errors.New("PREDICTION_WINDOW must be positive"))
	}
	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}

	return errors.Join(errs...)
}

// DatabaseParams returns the connection parameters for the configured driver
func (c *Config) DatabaseParams() database.ConnectionParams {
	return database.ConnectionParams{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.SQLitePath,
	}
}

// Registry returns the built-in rulesets plus any defined in RULESETS_FILE
func (c *Config) Registry() (*scoring.Registry, error) {
	return scoring.LoadRegistry(c.RulesetsFile)
}

// Timeout returns REQUEST_TIMEOUT as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// NotificationsEnabled reports whether job results go to Telegram
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvListWithDefault splits a comma separated value, dropping blanks
func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
