package repo

import (
	"context"
	"fmt"
	"time"

	"moodboard/internal/domain"
	"moodboard/internal/infra"
	"moodboard/internal/sqlinline"
)

// EnhancementRepo is the append-only moodboard_enhancements table.
type EnhancementRepo struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewEnhancementRepo(sql infra.SQLExecutor) *EnhancementRepo {
	return &EnhancementRepo{sql: sql, now: time.Now}
}

func (r *EnhancementRepo) AppendEnhancementLog(ctx context.Context, entry domain.EnhancementLogEntry) error {
	if entry.ID == "" || entry.MoodboardID == "" {
		return fmt.Errorf("%w: log entry needs id and moodboard id", domain.ErrInvalidRequest)
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertEnhancementLog,
		entry.ID,
		entry.MoodboardID,
		entry.ItemID,
		entry.OriginalURL,
		entry.EnhancedURL,
		string(entry.EnhancementType),
		string(entry.Provider),
		entry.TaskID,
		entry.Cost,
		entry.Attribution,
		ts.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append enhancement %s: %w", entry.ID, err)
	}
	return nil
}

func (r *EnhancementRepo) TotalCost(ctx context.Context, moodboardID string) (int, error) {
	var total int
	if err := r.sql.QueryRow(ctx, sqlinline.QSumEnhancementCost, moodboardID).Scan(&total); err != nil {
		return 0, fmt.Errorf("total cost %s: %w", moodboardID, err)
	}
	return total, nil
}

// ListEnhancements returns the log for a moodboard, oldest first.
func (r *EnhancementRepo) ListEnhancements(ctx context.Context, moodboardID string) ([]domain.EnhancementLogEntry, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListEnhancementLog, moodboardID)
	if err != nil {
		return nil, fmt.Errorf("list enhancements %s: %w", moodboardID, err)
	}
	defer rows.Close()

	var out []domain.EnhancementLogEntry
	for rows.Next() {
		var (
			e             domain.EnhancementLogEntry
			typ, provider string
		)
		if err := rows.Scan(&e.ID, &e.MoodboardID, &e.ItemID, &e.OriginalURL, &e.EnhancedURL,
			&typ, &provider, &e.TaskID, &e.Cost, &e.Attribution, &e.Timestamp); err != nil {
			return nil, err
		}
		e.EnhancementType = domain.EnhancementType(typ)
		e.Provider = domain.ProviderID(provider)
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ domain.EnhancementLog = (*EnhancementRepo)(nil)
