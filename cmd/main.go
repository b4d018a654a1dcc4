package main

import "github.com/adanyl0v/task-api/internal/app"

func main() {
	logger := app.NewDefaultLogger()
	cfg := app.MustReadEnv(logger)
	logger = app.MustInitApplicationLogger(logger, cfg.Env)

	pgPool := app.MustConnectPostgres(logger, cfg.Postgres)
	defer app.DisconnectPostgres(logger, pgPool)

	redisClient := app.ConnectRedis(logger, cfg.Redis)
	defer app.DisconnectRedis(logger, redisClient)

	app.MustListenAndServeHTTP(logger, cfg, pgPool, redisClient)
}
