package config

import (
	"errors"
	"fmt"
	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"io/fs"
	"log"
	"strings"
)

type Config struct {
	HttpPort        string `env:"HTTP_PORT" envDefault:"8080"`
	ApiBasePath     string `env:"API_BASE_PATH" envDefault:"/api/issue"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`

	CorsAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"100"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"LOG_ENCODING" envDefault:"json"`

	DbHost     string `env:"DB_HOST" envDefault:"postgres"`
	DbPort     string `env:"DB_PORT" envDefault:"5432"`
	DbUser     string `env:"DB_USER" envDefault:"user"`
	DbPassword string `env:"DB_PASSWORD" envDefault:"password"`
	DbName     string `env:"DB_NAME" envDefault:"issues"`

	RedisHost       string `env:"REDIS_HOST" envDefault:"redis"`
	RedisPort       string `env:"REDIS_PORT" envDefault:"6379"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"60"`

	ChHost     string `env:"CLICKHOUSE_HOST" envDefault:"clickhouse"`
	ChPort     string `env:"CLICKHOUSE_PORT" envDefault:"9000"`
	ChDatabase string `env:"CLICKHOUSE_DATABASE" envDefault:"default"`

	NatsURL string `env:"NATS_URL" envDefault:"nats://nats:4222"`
}

// Load reads .env (if present) into the process environment and parses Config from it.
func Load(filenames ...string) (*Config, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

func (c *Config) validate() error {
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize)
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE (%d) must not be less than DEFAULT_PAGE_SIZE (%d)",
			c.MaxPageSize, c.DefaultPageSize)
	}
	if !strings.HasPrefix(c.ApiBasePath, "/") {
		return fmt.Errorf("API_BASE_PATH must start with '/', got %q", c.ApiBasePath)
	}

	return nil
}

// PostgresDSN builds the connection string for pgxpool.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DbUser,
		c.DbPassword,
		c.DbHost,
		c.DbPort,
		c.DbName,
	)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CorsAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}

	return origins
}
