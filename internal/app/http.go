package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/auth"
	"github.com/adanyl0v/task-api/internal/config"
	"github.com/adanyl0v/task-api/internal/delivery/http/middleware"
	"github.com/adanyl0v/task-api/internal/delivery/http/v1"
	"github.com/adanyl0v/task-api/internal/repository"
	"github.com/adanyl0v/task-api/internal/services"
)

func MustListenAndServeHTTP(
	logger zerolog.Logger,
	cfg *config.Config,
	pgPool *pgxpool.Pool,
	redisClient *redis.Client,
) {
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	handler := mustNewHandler(logger, cfg, pgPool)
	limiter := middleware.NewRateLimiter(
		logger,
		redisClient,
		metrics,
		"login",
		cfg.Redis.LoginRateLimit,
		cfg.Redis.LoginRateWindow,
	)
	router := newRouter(logger, handler, metrics, registry, limiter)

	httpCfg := cfg.HTTP
	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill (no params) sends SIGTERM, kill -2 sends SIGINT.
	// SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	logger.Info().Msg("shut down http server")
}

func mustNewHandler(logger zerolog.Logger, cfg *config.Config, pgPool *pgxpool.Pool) v1.Handler {
	jwtCfg := cfg.JWT
	tokens, err := auth.NewTokenManager(jwtCfg.Issuer, []byte(jwtCfg.SigningKey), jwtCfg.Algorithm)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to create token manager")
		panic(err)
	}

	users := repository.NewUserRepository(logger, pgPool)
	tasks := repository.NewTaskRepository(logger, pgPool)

	return v1.New(
		logger,
		services.NewAuthService(logger, users, auth.NewPasswordHasher(nil), tokens, jwtCfg.AccessTokenTTL),
		services.NewTaskService(logger, tasks, nil),
		tokens,
		pgPool,
	)
}

func newRouter(
	logger zerolog.Logger,
	handler v1.Handler,
	metrics *middleware.Metrics,
	gatherer prometheus.Gatherer,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())
	router.Use(metrics.Instrument())

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	v1.RegisterRoutes(router, handler, metrics.LoginOutcomes(), limiter.Handler())
	return router
}
