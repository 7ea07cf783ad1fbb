package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/domain"
)

func TestTaskMachineSynchronousPath(t *testing.T) {
	m := newTaskMachine("item-1", domain.ProviderSeedream, nil)
	require.NoError(t, m.Submit())
	assert.Equal(t, 10, m.Snapshot().Progress)

	require.NoError(t, m.Complete("https://cdn.example.com/x.jpg"))
	task := m.Snapshot()
	assert.Equal(t, domain.TaskCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	assert.Equal(t, "https://cdn.example.com/x.jpg", task.ResultURL)
}

func TestTaskMachineRejectsIllegalTransitions(t *testing.T) {
	m := newTaskMachine("item-1", domain.ProviderNanoBanana, nil)
	require.ErrorIs(t, m.Complete("x"), domain.ErrIllegalTransition)
	require.ErrorIs(t, m.Accept("t1"), domain.ErrIllegalTransition)

	require.NoError(t, m.Submit())
	require.ErrorIs(t, m.Submit(), domain.ErrIllegalTransition)
	require.NoError(t, m.Accept("t1"))
	require.ErrorIs(t, m.Accept("t2"), domain.ErrIllegalTransition)
	require.NoError(t, m.Fail(newError(domain.KindTimeout, "budget", nil)))

	require.ErrorIs(t, m.Complete("x"), domain.ErrIllegalTransition)
	require.ErrorIs(t, m.Fail(newError(domain.KindUnknown, "", nil)), domain.ErrIllegalTransition)
	assert.Equal(t, domain.KindTimeout, m.Snapshot().ErrorKind)
	assert.Equal(t, "t1", m.Snapshot().TaskID)
}

func TestTaskMachineProgressIsMonotonic(t *testing.T) {
	m := newTaskMachine("item-1", domain.ProviderNanoBanana, nil)
	m.Tick(5)
	assert.Zero(t, m.Snapshot().Progress, "ticks outside polling are ignored")

	require.NoError(t, m.Submit())
	require.NoError(t, m.Accept("t1"))
	assert.Equal(t, 30, m.Snapshot().Progress)

	last := m.Snapshot().Progress
	for attempt := 1; attempt <= 60; attempt++ {
		m.Tick(attempt)
		p := m.Snapshot().Progress
		assert.GreaterOrEqual(t, p, last)
		assert.LessOrEqual(t, p, 95)
		last = p
	}
	assert.Equal(t, 95, last)

	m.Tick(1)
	assert.Equal(t, 95, m.Snapshot().Progress)
}

func TestPollProgress(t *testing.T) {
	assert.Equal(t, 33, pollProgress(1))
	assert.Equal(t, 37, pollProgress(2))
	assert.Equal(t, 65, pollProgress(10))
	assert.Equal(t, 95, pollProgress(19))
	assert.Equal(t, 95, pollProgress(60))
}
