package enhance

import (
	"fmt"
	"time"

	"moodboard/internal/domain"
)

const (
	progressProcessing = 10
	progressPolling    = 30
	progressPollCap    = 95
	progressDone       = 100
)

var transitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskIdle:       {domain.TaskProcessing},
	domain.TaskProcessing: {domain.TaskCompleted, domain.TaskPolling, domain.TaskFailed},
	domain.TaskPolling:    {domain.TaskCompleted, domain.TaskFailed},
}

// taskMachine drives one task through the lifecycle. It is owned by a single
// goroutine at a time; the in-flight registry only ever sees copies.
type taskMachine struct {
	task domain.EnhancementTask
	now  func() time.Time
}

func newTaskMachine(itemID string, provider domain.ProviderID, now func() time.Time) *taskMachine {
	if now == nil {
		now = time.Now
	}
	return &taskMachine{
		task: domain.EnhancementTask{
			ItemID:    itemID,
			Provider:  provider,
			Status:    domain.TaskIdle,
			UpdatedAt: now(),
		},
		now: now,
	}
}

func (m *taskMachine) transition(to domain.TaskStatus) error {
	from := m.task.Status
	for _, allowed := range transitions[from] {
		if allowed == to {
			m.task.Status = to
			m.task.UpdatedAt = m.now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, from, to)
}

func (m *taskMachine) setProgress(p int) {
	if p > m.task.Progress {
		m.task.Progress = p
	}
}

// Submit moves idle to processing.
func (m *taskMachine) Submit() error {
	if err := m.transition(domain.TaskProcessing); err != nil {
		return err
	}
	m.setProgress(progressProcessing)
	return nil
}

// Accept records the provider task id and starts the polling phase.
func (m *taskMachine) Accept(taskID string) error {
	if err := m.transition(domain.TaskPolling); err != nil {
		return err
	}
	m.task.TaskID = taskID
	m.setProgress(progressPolling)
	return nil
}

// Tick advances the simulated progress for poll attempt n (1-based).
func (m *taskMachine) Tick(attempt int) {
	if m.task.Status != domain.TaskPolling {
		return
	}
	m.setProgress(pollProgress(attempt))
	m.task.UpdatedAt = m.now()
}

// Complete is valid from processing (sync providers) or polling.
func (m *taskMachine) Complete(resultURL string) error {
	if err := m.transition(domain.TaskCompleted); err != nil {
		return err
	}
	m.task.ResultURL = resultURL
	m.setProgress(progressDone)
	return nil
}

// Fail records a classified failure.
func (m *taskMachine) Fail(e *EnhancementError) error {
	if err := m.transition(domain.TaskFailed); err != nil {
		return err
	}
	m.task.ErrorKind = e.Kind
	m.task.ErrorDetail = e.Detail
	return nil
}

// Snapshot returns a copy of the task.
func (m *taskMachine) Snapshot() domain.EnhancementTask {
	return m.task
}

// pollProgress ramps from 30 towards 95 by 3.5 per attempt.
func pollProgress(attempt int) int {
	p := progressPolling + attempt*7/2
	if p > progressPollCap {
		return progressPollCap
	}
	return p
}
