package enhance

import (
	"context"
	"fmt"
	"time"

	"moodboard/internal/domain"
)

const (
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxPollAttempts = 60
)

// PollConfig bounds the polling phase of asynchronous tasks.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

func (c PollConfig) withDefaults() PollConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxPollAttempts
	}
	return c
}

// Budget is the longest a polling phase can last, excluding request time.
func (c PollConfig) Budget() time.Duration {
	c = c.withDefaults()
	return time.Duration(c.MaxAttempts) * c.Interval
}

type pollResult struct {
	resultURL string
	err       *EnhancementError
	abandoned bool
}

// poll runs the polling loop for a task already in the polling state. onTick
// receives every progress update. The loop stops at the first terminal
// provider status, the first transport error, or after MaxAttempts.
func poll(ctx context.Context, cfg PollConfig, transport domain.ProviderTransport, m *taskMachine, onTick func(domain.EnhancementTask)) pollResult {
	cfg = cfg.withDefaults()
	taskID := m.Snapshot().TaskID

	timer := time.NewTimer(cfg.Interval)
	defer timer.Stop()

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return pollResult{abandoned: true}
		case <-timer.C:
		}

		m.Tick(attempt)
		onTick(m.Snapshot())

		res, err := transport.PollStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return pollResult{abandoned: true}
			}
			return pollResult{err: ClassifyTransport(err)}
		}
		switch res.Status {
		case domain.RemoteCompleted:
			if res.ResultURL != "" {
				return pollResult{resultURL: res.ResultURL}
			}
		case domain.RemoteFailed:
			if res.Failure != nil {
				return pollResult{err: ClassifyProvider(*res.Failure)}
			}
			return pollResult{err: newError(domain.KindUnknown, "provider reported failure without detail", domain.ErrProviderFailure)}
		}
		timer.Reset(cfg.Interval)
	}
	return pollResult{err: newError(domain.KindTimeout, fmt.Sprintf("no terminal status after %d polls", cfg.MaxAttempts), nil)}
}
