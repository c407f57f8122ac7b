package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath      = "config/config.yaml"
	DefaultRetention = 24 * time.Hour
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	Migrate      bool   `yaml:"migrate"`
}

type LedgerConfig struct {
	Backend            string        `yaml:"backend"`
	TTL                time.Duration `yaml:"ttl"`
	MaxIssueAttempts   int           `yaml:"max_issue_attempts"`
	CompactionSchedule string        `yaml:"compaction_schedule"`
	// Retention is how long an expired code is kept so late redeems still report it as expired.
	// nil means unset (24h); an explicit 0 purges codes as soon as they expire.
	Retention *time.Duration `yaml:"retention"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret    string        `yaml:"secret"`
	AccessTTL time.Duration `yaml:"access_ttl"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	BotUsername string `yaml:"bot_username"`
	WebhookURL  string `yaml:"webhook_url"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Telegram TelegramConfig `yaml:"telegram"`
	Email    EmailConfig    `yaml:"email"`
	Log      LogConfig      `yaml:"log"`
}

// LoadConfig reads the YAML file at path, applies .env / environment overrides
// and fills defaults. A missing file is not an error when the environment
// provides everything required.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	applyEnv(&cfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AUTHBOT_DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("AUTHBOT_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("AUTHBOT_TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("AUTHBOT_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("AUTHBOT_LEDGER_BACKEND"); v != "" {
		cfg.Ledger.Backend = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = BackendPostgres
	}
	if c.Ledger.TTL == 0 {
		c.Ledger.TTL = time.Hour
	}
	if c.Ledger.MaxIssueAttempts <= 0 {
		c.Ledger.MaxIssueAttempts = 5
	}
	if c.Ledger.CompactionSchedule == "" {
		c.Ledger.CompactionSchedule = "@every 15m"
	}
	if c.Ledger.Retention == nil {
		d := DefaultRetention
		c.Ledger.Retention = &d
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.JWT.AccessTTL <= 0 {
		c.JWT.AccessTTL = 15 * time.Minute
	}
	if c.Telegram.BotUsername == "" {
		c.Telegram.BotUsername = "MyAuthBot"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("ledger.backend: unknown backend %q", c.Ledger.Backend)
	}
	if c.Ledger.TTL <= 0 {
		return errors.New("ledger.ttl must be positive")
	}
	if c.Ledger.Retention != nil && *c.Ledger.Retention < 0 {
		return errors.New("ledger.retention must not be negative")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Database.DSN == "" {
		return errors.New("database.url is required")
	}
	return nil
}
