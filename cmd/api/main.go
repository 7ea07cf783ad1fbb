package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"moodboard/internal/adapter/memory"
	"moodboard/internal/bootstrap"
	httpapi "moodboard/internal/http"
	"moodboard/internal/http/handlers"
	"moodboard/internal/infra"
	"moodboard/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		stores bootstrap.Stores
		keys   bootstrap.KeySource
	)
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, using the in-memory store")
		stores = bootstrap.MemoryStores(memory.NewStore())
	} else {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		stores = bootstrap.PostgresStores(runner)
		keys = credentials.NewStore(runner)
	}

	transports, err := bootstrap.Transports(ctx, cfg, keys, nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure providers")
	}
	orch, gate, err := bootstrap.Orchestrator(cfg, stores, transports, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	app := handlers.NewApp(orch, gate, stores.Items, stores.Log, infra.Component(logger, "http"))
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("default_provider", cfg.DefaultEnhancementProvider).Msg("api listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	// Tasks still polling stay persisted; the worker resumes them.
	orch.Close()
	logger.Info().Int("active", len(orch.Active())).Msg("server stopped")
}
