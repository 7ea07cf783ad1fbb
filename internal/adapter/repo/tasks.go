package repo

import (
	"context"
	"fmt"
	"time"

	"moodboard/internal/domain"
	"moodboard/internal/infra"
	"moodboard/internal/sqlinline"
)

// TaskRepo persists enhancement task rows and hands stale ones to the worker.
type TaskRepo struct {
	sql infra.SQLExecutor
}

func NewTaskRepo(sql infra.SQLExecutor) *TaskRepo {
	return &TaskRepo{sql: sql}
}

func (r *TaskRepo) SaveTask(ctx context.Context, rec domain.TaskRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: task record needs an id", domain.ErrInvalidRequest)
	}
	now := time.Now().UTC()
	created, updated := rec.CreatedAt, rec.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertEnhancementTask,
		rec.ID,
		rec.TaskID,
		rec.UserID,
		rec.MoodboardID,
		rec.ItemID,
		string(rec.Provider),
		string(rec.Type),
		rec.Prompt,
		rec.Strength,
		rec.InputURL,
		string(rec.Status),
		rec.ResultURL,
		string(rec.ErrorKind),
		rec.ErrorDetail,
		rec.Cost,
		created,
		updated,
	)
	if err != nil {
		return fmt.Errorf("save task %s: %w", rec.ID, err)
	}
	return nil
}

// ClaimStale returns polling rows untouched for longer than olderThan.
func (r *TaskRepo) ClaimStale(ctx context.Context, olderThan time.Duration, limit int) ([]domain.TaskRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.sql.Query(ctx, sqlinline.QClaimStaleEnhancementTasks, olderThan.Seconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("claim stale tasks: %w", err)
	}
	defer rows.Close()

	var out []domain.TaskRecord
	for rows.Next() {
		var (
			rec                         domain.TaskRecord
			provider, typ, status, kind string
		)
		if err := rows.Scan(
			&rec.ID, &rec.TaskID, &rec.UserID, &rec.MoodboardID, &rec.ItemID, &provider,
			&typ, &rec.Prompt, &rec.Strength, &rec.InputURL, &status,
			&rec.ResultURL, &kind, &rec.ErrorDetail,
			&rec.Cost, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stale task: %w", err)
		}
		rec.Provider = domain.ProviderID(provider)
		rec.Type = domain.EnhancementType(typ)
		rec.Status = domain.TaskStatus(status)
		rec.ErrorKind = domain.ErrorKind(kind)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim stale tasks: %w", err)
	}
	return out, nil
}

var (
	_ domain.TaskRecorder = (*TaskRepo)(nil)
	_ domain.TaskQueue    = (*TaskRepo)(nil)
)
