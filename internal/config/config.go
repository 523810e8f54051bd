package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

var ErrUnknownStore = errors.New("unknown store backend")

type Config struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	Store       string        `env:"HABITS_STORE" envDefault:"sqlite"`
	Board       string        `env:"HABITS_BOARD" envDefault:"default"`
	SQLitePath  string        `env:"HABITS_SQLITE_PATH" envDefault:"habits.db"`
	Cache       bool          `env:"HABITS_CACHE" envDefault:"false"`
	CacheTTL    time.Duration `env:"HABITS_CACHE_TTL" envDefault:"30m"`
	TokenSecret string        `env:"HABITS_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"HABITS_TOKEN_TTL" envDefault:"720h"`
	RateLimit   int           `env:"HABITS_RATE_LIMIT" envDefault:"100"`
	Debug       bool          `env:"HABITS_DEBUG" envDefault:"false"`

	DB    DBConfig    `envPrefix:"DB_"`
	Redis RedisConfig `envPrefix:"REDIS_"`
}

type DBConfig struct {
	Driver   string `env:"DRIVER" envDefault:"pgx"`
	User     string `env:"USER" envDefault:"habits_user"`
	Password string `env:"PASSWORD" envDefault:"secret"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME" envDefault:"habits_db"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DSN builds a postgres URL understood by both pgx and lib/pq.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}

	if c.Store == StorePostgres && c.DB.Driver != "pgx" && c.DB.Driver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Store == StoreSQLite && c.SQLitePath == "" {
		return errors.New("HABITS_SQLITE_PATH must not be empty")
	}
	return nil
}

// UsesRedis reports whether any configured component needs a redis client.
func (c Config) UsesRedis() bool {
	return c.Store == StoreRedis || c.Cache
}
