package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

type Config struct {
	Env         string `env:"ENV" env-required:"true"`
	HTTP        HTTPConfig
	Postgres    PostgresConfig
	JWT         JWTConfig
	Redis       RedisConfig
	InitialUser InitialUserConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" env-default:"10"`
}

type JWTConfig struct {
	SigningKey     string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	Algorithm      string        `env:"JWT_ALGORITHM" env-default:"HS256"`
	Issuer         string        `env:"JWT_ISSUER" env-default:"task-api"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"30m"`
}

// RedisConfig is optional; an empty Addr disables login rate limiting.
type RedisConfig struct {
	Addr            string        `env:"REDIS_ADDR"`
	Password        string        `env:"REDIS_PASSWORD"`
	DB              int           `env:"REDIS_DB" env-default:"0"`
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" env-default:"5"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" env-default:"1m"`
}

// InitialUserConfig is read only by the seed command.
type InitialUserConfig struct {
	Email    string `env:"INITIAL_USER_EMAIL"`
	Password string `env:"INITIAL_USER_PASSWORD"`
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported jwt algorithm: %s", c.JWT.Algorithm)
	}

	if c.JWT.SigningKey == "" {
		return errors.New("jwt signing key is empty")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("jwt access token ttl must be positive: %s", c.JWT.AccessTokenTTL)
	}
	if c.Postgres.MaxConns < 1 {
		return fmt.Errorf("postgres max conns must be positive: %d", c.Postgres.MaxConns)
	}
	return nil
}

func (c PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host,
		c.Port, c.Database, c.SSLMode)
}
