package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/config"
)

const redisPingTimeout = 2 * time.Second

// ConnectRedis returns nil when Redis is not configured or not reachable.
// Callers treat a nil client as "rate limiting disabled".
func ConnectRedis(logger zerolog.Logger, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		logger.Info().Msg("redis is not configured, login rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	err := client.Ping(ctx).Err()
	if err != nil {
		logger.Warn().
			Err(err).
			Str("addr", cfg.Addr).
			Msg("failed to ping redis, login rate limiting disabled")
		_ = client.Close()
		return nil
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Msg("connected to redis")
	return client
}

func DisconnectRedis(logger zerolog.Logger, client *redis.Client) {
	if client == nil {
		return
	}
	err := client.Close()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to close redis client")
		return
	}
	logger.Info().Msg("disconnected from redis")
}
