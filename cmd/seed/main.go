package main

import (
	"context"
	"flag"

	"github.com/adanyl0v/task-api/internal/app"
	"github.com/adanyl0v/task-api/internal/auth"
	"github.com/adanyl0v/task-api/internal/repository"
)

func main() {
	sampleTasks := flag.Bool("sample-tasks", false, "insert sample tasks when the task table is empty")
	flag.Parse()

	logger := app.NewDefaultLogger()
	cfg := app.MustReadEnv(logger)
	logger = app.MustInitApplicationLogger(logger, cfg.Env)

	pgPool := app.MustConnectPostgres(logger, cfg.Postgres)
	defer app.DisconnectPostgres(logger, pgPool)

	seeder := app.NewSeeder(
		logger,
		repository.NewUserRepository(logger, pgPool),
		repository.NewTaskRepository(logger, pgPool),
		auth.NewPasswordHasher(nil),
	)

	err := seeder.Seed(context.Background(), cfg.InitialUser, *sampleTasks)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to seed database")
		panic(err)
	}
}
