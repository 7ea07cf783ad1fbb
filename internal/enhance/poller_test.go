package enhance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/domain"
)

func pollingMachine(t *testing.T) *taskMachine {
	t.Helper()
	m := newTaskMachine("item-1", domain.ProviderNanoBanana, nil)
	require.NoError(t, m.Submit())
	require.NoError(t, m.Accept("t1"))
	return m
}

func TestPollReportsEveryTick(t *testing.T) {
	transport := &scriptedTransport{steps: append(processing(3), pollStep{res: domain.PollResult{Status: domain.RemoteCompleted, ResultURL: "https://cdn.example.com/y.jpg"}})}
	m := pollingMachine(t)

	var ticks []int
	res := poll(context.Background(), PollConfig{Interval: time.Millisecond, MaxAttempts: 10}, transport, m, func(task domain.EnhancementTask) {
		ticks = append(ticks, task.Progress)
	})
	require.Nil(t, res.err)
	assert.False(t, res.abandoned)
	assert.Equal(t, "https://cdn.example.com/y.jpg", res.resultURL)
	assert.Equal(t, []int{33, 37, 40, 44}, ticks)
}

func TestPollIgnoresCompletedWithoutURL(t *testing.T) {
	transport := &scriptedTransport{steps: []pollStep{
		{res: domain.PollResult{Status: domain.RemoteCompleted}},
		{res: domain.PollResult{Status: domain.RemoteCompleted, ResultURL: "https://cdn.example.com/y.jpg"}},
	}}
	res := poll(context.Background(), PollConfig{Interval: time.Millisecond, MaxAttempts: 5}, transport, pollingMachine(t), func(domain.EnhancementTask) {})
	require.Nil(t, res.err)
	assert.Equal(t, 2, transport.polls())
}

func TestPollFailedWithoutDetailIsUnknown(t *testing.T) {
	transport := &scriptedTransport{steps: []pollStep{{res: domain.PollResult{Status: domain.RemoteFailed}}}}
	res := poll(context.Background(), PollConfig{Interval: time.Millisecond, MaxAttempts: 5}, transport, pollingMachine(t), func(domain.EnhancementTask) {})
	require.NotNil(t, res.err)
	assert.Equal(t, domain.KindUnknown, res.err.Kind)
}

func TestPollAbandonedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	transport := &scriptedTransport{}
	res := poll(ctx, PollConfig{Interval: time.Hour, MaxAttempts: 5}, transport, pollingMachine(t), func(domain.EnhancementTask) {})
	assert.True(t, res.abandoned)
	assert.Zero(t, transport.polls())
}

func TestPollConfigDefaults(t *testing.T) {
	cfg := PollConfig{}.withDefaults()
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, 60, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, PollConfig{}.Budget())
	assert.Equal(t, 30*time.Second, PollConfig{Interval: 3 * time.Second, MaxAttempts: 10}.Budget())
}
