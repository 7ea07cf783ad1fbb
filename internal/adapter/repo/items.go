package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moodboard/internal/domain"
	"moodboard/internal/infra"
	"moodboard/internal/sqlinline"
)

// ItemRepo implements domain.ItemStore on PostgreSQL.
type ItemRepo struct {
	sql infra.SQLExecutor
}

func NewItemRepo(sql infra.SQLExecutor) *ItemRepo {
	return &ItemRepo{sql: sql}
}

func (r *ItemRepo) GetItem(ctx context.Context, itemID string) (*domain.MoodboardItem, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectMoodboardItem, itemID)
	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", itemID, err)
	}
	return item, nil
}

// UpdateItem applies the non-nil fields of patch in one statement.
func (r *ItemRepo) UpdateItem(ctx context.Context, itemID string, patch domain.ItemPatch) (*domain.MoodboardItem, error) {
	var status, source *string
	if patch.EnhancementStatus != nil {
		s := string(*patch.EnhancementStatus)
		status = &s
	}
	if patch.Source != nil {
		s := string(*patch.Source)
		source = &s
	}
	row := r.sql.QueryRow(ctx, sqlinline.QPatchMoodboardItem,
		itemID,
		patch.URL,
		patch.OriginalURL,
		patch.EnhancedURL,
		status,
		patch.ShowingOriginal,
		source,
	)
	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("update item %s: %w", itemID, err)
	}
	return item, nil
}

// ListItems returns a moodboard's items in board order.
func (r *ItemRepo) ListItems(ctx context.Context, moodboardID string) ([]domain.MoodboardItem, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListMoodboardItems, moodboardID)
	if err != nil {
		return nil, fmt.Errorf("list items %s: %w", moodboardID, err)
	}
	defer rows.Close()

	var out []domain.MoodboardItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items %s: %w", moodboardID, err)
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (*domain.MoodboardItem, error) {
	var (
		item           domain.MoodboardItem
		source, status string
	)
	err := row.Scan(
		&item.ID,
		&item.MoodboardID,
		&source,
		&item.URL,
		&item.OriginalURL,
		&item.EnhancedURL,
		&status,
		&item.ShowingOriginal,
		&item.Position,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	item.Source = domain.ItemSource(source)
	item.EnhancementStatus = domain.TaskStatus(status)
	return &item, nil
}

func notFound(err error) error {
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	return err
}

var _ domain.ItemStore = (*ItemRepo)(nil)
