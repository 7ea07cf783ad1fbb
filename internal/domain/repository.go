package domain

import (
	"context"
	"time"
)

// ItemStore is the moodboard item collection. Callers never cache items.
type ItemStore interface {
	GetItem(ctx context.Context, itemID string) (*MoodboardItem, error)
	UpdateItem(ctx context.Context, itemID string, patch ItemPatch) (*MoodboardItem, error)
}

// EnhancementLog is the append-only history owned by the moodboard aggregate.
type EnhancementLog interface {
	AppendEnhancementLog(ctx context.Context, entry EnhancementLogEntry) error
	TotalCost(ctx context.Context, moodboardID string) (int, error)
}

// CreditLedger reads balances. Decrements happen elsewhere.
type CreditLedger interface {
	GetBalance(ctx context.Context, userID string) (CreditBalance, error)
}

// TaskRecorder persists task lifecycle rows.
type TaskRecorder interface {
	SaveTask(ctx context.Context, rec TaskRecord) error
}

// TaskQueue hands out persisted tasks whose poll loop went away.
type TaskQueue interface {
	ClaimStale(ctx context.Context, olderThan time.Duration, limit int) ([]TaskRecord, error)
}
