package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"moodboard/internal/domain"
)

// Store keeps items, enhancement history, balances and task rows in process.
// It backs tests and local runs without a database.
type Store struct {
	mu       sync.RWMutex
	items    map[string]domain.MoodboardItem
	logs     map[string][]domain.EnhancementLogEntry // moodboard id -> entries
	balances map[string]domain.CreditBalance
	tasks    map[string]domain.TaskRecord
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		items:    make(map[string]domain.MoodboardItem),
		logs:     make(map[string][]domain.EnhancementLogEntry),
		balances: make(map[string]domain.CreditBalance),
		tasks:    make(map[string]domain.TaskRecord),
		now:      time.Now,
	}
}

// PutItem inserts or replaces an item.
func (s *Store) PutItem(item domain.MoodboardItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.EnhancementStatus == "" {
		item.EnhancementStatus = domain.TaskIdle
	}
	s.items[item.ID] = item
}

// SetBalance replaces the balance for a user.
func (s *Store) SetBalance(b domain.CreditBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[b.UserID] = b
}

// Debit lowers a balance the way the external ledger would after a job.
func (s *Store) Debit(userID string, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.balances[userID]
	b.UserID = userID
	b.Current -= amount
	s.balances[userID] = b
}

func (s *Store) GetItem(_ context.Context, itemID string) (*domain.MoodboardItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	return &item, nil
}

func (s *Store) UpdateItem(_ context.Context, itemID string, patch domain.ItemPatch) (*domain.MoodboardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	item = item.Apply(patch)
	item.UpdatedAt = s.now()
	s.items[itemID] = item
	return &item, nil
}

func (s *Store) AppendEnhancementLog(_ context.Context, entry domain.EnhancementLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[entry.MoodboardID] = append(s.logs[entry.MoodboardID], entry)
	return nil
}

func (s *Store) TotalCost(_ context.Context, moodboardID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, e := range s.logs[moodboardID] {
		total += e.Cost
	}
	return total, nil
}

// Entries returns a copy of the moodboard's enhancement log.
func (s *Store) Entries(moodboardID string) []domain.EnhancementLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.EnhancementLogEntry(nil), s.logs[moodboardID]...)
}

func (s *Store) ListEnhancements(_ context.Context, moodboardID string) ([]domain.EnhancementLogEntry, error) {
	return s.Entries(moodboardID), nil
}

func (s *Store) ListItems(_ context.Context, moodboardID string) ([]domain.MoodboardItem, error) {
	return s.Moodboard(moodboardID).Items, nil
}

// Moodboard assembles the aggregate for reporting.
func (s *Store) Moodboard(moodboardID string) domain.Moodboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mb := domain.Moodboard{ID: moodboardID}
	for _, item := range s.items {
		if item.MoodboardID == moodboardID {
			mb.Items = append(mb.Items, item)
		}
	}
	sort.Slice(mb.Items, func(i, j int) bool {
		if mb.Items[i].Position != mb.Items[j].Position {
			return mb.Items[i].Position < mb.Items[j].Position
		}
		return mb.Items[i].ID < mb.Items[j].ID
	})
	mb.EnhancementLog = append([]domain.EnhancementLogEntry(nil), s.logs[moodboardID]...)
	return mb
}

func (s *Store) GetBalance(_ context.Context, userID string) (domain.CreditBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[userID]
	if !ok {
		return domain.CreditBalance{UserID: userID, Tier: domain.CreditTierFree}, nil
	}
	return b, nil
}

func (s *Store) SaveTask(_ context.Context, rec domain.TaskRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("save task: %w: missing id", domain.ErrInvalidRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = s.now()
	}
	s.tasks[rec.ID] = rec
	return nil
}

// Task returns a persisted task row.
func (s *Store) Task(id string) (domain.TaskRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tasks[id]
	return rec, ok
}

// ClaimStale returns polling tasks not touched within olderThan and bumps
// their timestamp so a second caller does not pick them up again.
func (s *Store) ClaimStale(_ context.Context, olderThan time.Duration, limit int) ([]domain.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	cutoff := now.Add(-olderThan)
	var out []domain.TaskRecord
	for _, rec := range s.tasks {
		if rec.Status != domain.TaskPolling || rec.TaskID == "" || rec.UpdatedAt.After(cutoff) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for _, rec := range out {
		rec.UpdatedAt = now
		s.tasks[rec.ID] = rec
	}
	return out, nil
}

var (
	_ domain.ItemStore      = (*Store)(nil)
	_ domain.EnhancementLog = (*Store)(nil)
	_ domain.CreditLedger   = (*Store)(nil)
	_ domain.TaskRecorder   = (*Store)(nil)
	_ domain.TaskQueue      = (*Store)(nil)
)
