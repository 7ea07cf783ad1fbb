package enhance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"moodboard/internal/adapter/memory"
	"moodboard/internal/domain"
)

type pollStep struct {
	res domain.PollResult
	err error
}

// scriptedTransport replays a fixed submit answer and a sequence of poll
// answers; the last poll step repeats once the script runs out.
type scriptedTransport struct {
	mu        sync.Mutex
	submit    domain.Submission
	submitErr error
	steps     []pollStep
	block     chan struct{}

	// submitEntered is closed when Submit starts; Submit then waits on submitBlock.
	submitEntered chan struct{}
	submitBlock   chan struct{}

	jobs      []domain.ProviderJob
	pollCalls int
}

func (s *scriptedTransport) Submit(_ context.Context, job domain.ProviderJob) (domain.Submission, error) {
	if s.submitBlock != nil {
		close(s.submitEntered)
		<-s.submitBlock
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return s.submit, s.submitErr
}

func (s *scriptedTransport) PollStatus(ctx context.Context, _ string) (domain.PollResult, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return domain.PollResult{}, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.pollCalls
	s.pollCalls++
	if len(s.steps) == 0 {
		return domain.PollResult{Status: domain.RemoteProcessing}, nil
	}
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	return s.steps[i].res, s.steps[i].err
}

func (s *scriptedTransport) submits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *scriptedTransport) polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollCalls
}

func processing(n int) []pollStep {
	out := make([]pollStep, n)
	for i := range out {
		out[i] = pollStep{res: domain.PollResult{Status: domain.RemoteProcessing}}
	}
	return out
}

func accepted(taskID string) domain.Submission {
	return domain.Submission{Kind: domain.SubmissionAccepted, TaskID: taskID}
}

func syncResult(url string) domain.Submission {
	return domain.Submission{Kind: domain.SubmissionSync, ResultURL: url}
}

type failingLedger struct{}

func (failingLedger) GetBalance(context.Context, string) (domain.CreditBalance, error) {
	return domain.CreditBalance{}, errors.New("ledger offline")
}

// failingLog refuses every enhancement log write.
type failingLog struct {
	*memory.Store
}

func (failingLog) AppendEnhancementLog(context.Context, domain.EnhancementLogEntry) error {
	return errors.New("log offline")
}

type fixture struct {
	store    *memory.Store
	nano     *scriptedTransport
	seedream *scriptedTransport
	orch     *Orchestrator
}

type fixtureOption func(*Options)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutItem(domain.MoodboardItem{
		ID:          "item-1",
		MoodboardID: "mb-1",
		Source:      domain.SourceUnsplash,
		URL:         "https://images.example.com/original.jpg",
	})
	store.SetBalance(domain.CreditBalance{UserID: "user-1", Current: 10, Monthly: 10, Tier: domain.CreditTierPlus})

	registry, err := NewRegistry("nanobanana")
	require.NoError(t, err)

	f := &fixture{
		store:    store,
		nano:     &scriptedTransport{submit: accepted("t1")},
		seedream: &scriptedTransport{submit: syncResult("https://cdn.example.com/x.jpg")},
	}
	o := Options{
		Registry: registry,
		Gate:     NewCreditGate(store),
		Transports: map[domain.ProviderID]domain.ProviderTransport{
			domain.ProviderNanoBanana: f.nano,
			domain.ProviderSeedream:   f.seedream,
		},
		Items:          store,
		Log:            store,
		Tasks:          store,
		Poll:           PollConfig{Interval: time.Millisecond, MaxAttempts: 60},
		CompletedGrace: time.Hour,
		FailedGrace:    time.Hour,
	}
	for _, fn := range opts {
		fn(&o)
	}
	orch, err := New(o)
	require.NoError(t, err)
	t.Cleanup(orch.Close)
	f.orch = orch
	return f
}

func request(provider domain.ProviderID) domain.EnhancementRequest {
	return domain.EnhancementRequest{
		UserID:      "user-1",
		MoodboardID: "mb-1",
		ItemID:      "item-1",
		Type:        domain.EnhancementLighting,
		Prompt:      "warm golden hour light",
		Provider:    provider,
	}
}

func (f *fixture) item(t *testing.T) domain.MoodboardItem {
	t.Helper()
	item, err := f.store.GetItem(context.Background(), "item-1")
	require.NoError(t, err)
	return *item
}
