package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"moodboard/internal/bootstrap"
	"moodboard/internal/domain"
	"moodboard/internal/enhance"
	"moodboard/internal/infra"
	"moodboard/internal/infra/credentials"
)

const minClaimInterval = 5 * time.Second

type resumer interface {
	Resume(ctx context.Context, rec domain.TaskRecord) (string, error)
}

// staleWorker re-attaches poll loops to tasks whose api process went away.
type staleWorker struct {
	queue       domain.TaskQueue
	resumer     resumer
	staleAfter  time.Duration
	batchSize   int
	concurrency int
	interval    time.Duration
	logger      zerolog.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	stores := bootstrap.PostgresStores(runner)

	transports, err := bootstrap.Transports(ctx, cfg, credentials.NewStore(runner), nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: providers")
	}
	orch, _, err := bootstrap.Orchestrator(cfg, stores, transports, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: orchestrator")
	}
	defer orch.Close()

	w := &staleWorker{
		queue:       stores.Queue,
		resumer:     orch,
		staleAfter:  cfg.WorkerStaleAfter,
		batchSize:   cfg.WorkerBatchSize,
		concurrency: cfg.WorkerConcurrency,
		interval:    max(cfg.WorkerStaleAfter/4, minClaimInterval),
		logger:      logger,
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker: stopped")
		return
	}
	logger.Info().Msg("worker: stopped")
}

// Run claims and resumes batches until ctx ends.
func (w *staleWorker) Run(ctx context.Context) error {
	w.logger.Info().Dur("stale_after", w.staleAfter).Int("concurrency", w.concurrency).Msg("worker: started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		n, err := w.runOnce(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("worker: claim failed")
		} else if n > 0 {
			w.logger.Info().Int("resumed", n).Msg("worker: batch done")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runOnce claims one batch and waits for every resumed task to finish.
func (w *staleWorker) runOnce(ctx context.Context) (int, error) {
	recs, err := w.queue.ClaimStale(ctx, w.staleAfter, w.batchSize)
	if err != nil {
		return 0, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(w.concurrency, 1))
	for _, rec := range recs {
		g.Go(func() error {
			log := w.logger.With().Str("task_id", rec.TaskID).Str("item_id", rec.ItemID).Str("provider", string(rec.Provider)).Logger()
			url, err := w.resumer.Resume(gctx, rec)
			var e *enhance.EnhancementError
			switch {
			case err == nil:
				log.Info().Str("result_url", url).Msg("worker: task completed")
			case errors.As(err, &e):
				log.Warn().Str("kind", string(e.Kind)).Str("detail", e.Detail).Msg("worker: task failed")
			default:
				log.Error().Err(err).Msg("worker: resume failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return len(recs), nil
}
