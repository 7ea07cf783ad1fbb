package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"moodboard/internal/infra"
	"moodboard/internal/sqlinline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "migrate").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	for i, stmt := range sqlinline.Schema {
		if _, err := runner.Exec(ctx, stmt); err != nil {
			logger.Fatal().Err(err).Int("step", i).Msg("migrate: statement failed")
		}
	}
	logger.Info().Int("statements", len(sqlinline.Schema)).Msg("migrate: schema up to date")
}
