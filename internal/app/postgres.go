package app

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/config"
)

func newPostgresPoolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, err
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	poolCfg.MaxConns = cfg.MaxConns
	// Drop connections that died while idle instead of failing the request.
	poolCfg.PrepareConn = func(ctx context.Context, conn *pgx.Conn) (bool, error) {
		return conn.Ping(ctx) == nil, nil
	}
	return poolCfg, nil
}

func MustConnectPostgres(logger zerolog.Logger, cfg config.PostgresConfig) *pgxpool.Pool {
	poolCfg, err := newPostgresPoolConfig(cfg)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = pool.Ping(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Int32("max_conns", cfg.MaxConns).
		Msg("connected to postgres")
	return pool
}

func DisconnectPostgres(logger zerolog.Logger, pool *pgxpool.Pool) {
	pool.Close()
	logger.Info().Msg("disconnected from postgres")
}
