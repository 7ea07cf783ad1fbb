package enhance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"moodboard/internal/domain"
)

// Completion describes a finished task to merge into its item.
type Completion struct {
	ItemID      string
	MoodboardID string
	TaskID      string
	ResultURL   string
	Type        domain.EnhancementType
	Provider    ProviderInfo
}

// Reconciler writes terminal task outcomes back into the item collection and
// the moodboard's enhancement log.
type Reconciler struct {
	items domain.ItemStore
	log   domain.EnhancementLog
	now   func() time.Time
}

// NewReconciler wires the reconciler to its capabilities.
func NewReconciler(items domain.ItemStore, log domain.EnhancementLog) *Reconciler {
	return &Reconciler{items: items, log: log, now: time.Now}
}

// Complete stores the enhanced URL and appends exactly one log entry. The
// item's first pristine URL is captured once and never replaced. When the log
// entry cannot be written the item is put back as it was.
func (r *Reconciler) Complete(ctx context.Context, c Completion) (*domain.MoodboardItem, error) {
	current, err := r.items.GetItem(ctx, c.ItemID)
	if err != nil {
		return nil, fmt.Errorf("reconcile: load item %s: %w", c.ItemID, err)
	}

	enhanced := c.ResultURL
	status := domain.TaskCompleted
	showing := false
	source := domain.SourceAIEnhanced
	patch := domain.ItemPatch{
		EnhancedURL:       &enhanced,
		EnhancementStatus: &status,
		ShowingOriginal:   &showing,
		Source:            &source,
	}
	if current.OriginalURL == "" {
		original := current.URL
		patch.OriginalURL = &original
	}
	updated, err := r.items.UpdateItem(ctx, c.ItemID, patch)
	if err != nil {
		return nil, fmt.Errorf("reconcile: update item %s: %w", c.ItemID, err)
	}

	moodboardID := c.MoodboardID
	if moodboardID == "" {
		moodboardID = updated.MoodboardID
	}
	entry := domain.EnhancementLogEntry{
		ID:              uuid.NewString(),
		MoodboardID:     moodboardID,
		ItemID:          c.ItemID,
		OriginalURL:     updated.OriginalURL,
		EnhancedURL:     enhanced,
		EnhancementType: c.Type,
		Provider:        c.Provider.ID,
		TaskID:          c.TaskID,
		Cost:            c.Provider.Cost,
		Attribution:     Attribution(c.Type),
		Timestamp:       r.now().UTC(),
	}
	if err := r.log.AppendEnhancementLog(ctx, entry); err != nil {
		if _, rerr := r.items.UpdateItem(ctx, c.ItemID, restorePatch(*current)); rerr != nil {
			return nil, fmt.Errorf("reconcile: append log for %s: %w (restore item: %v)", c.ItemID, err, rerr)
		}
		return nil, fmt.Errorf("reconcile: append log for %s: %w", c.ItemID, err)
	}
	return updated, nil
}

// restorePatch puts back every field Complete touches.
func restorePatch(item domain.MoodboardItem) domain.ItemPatch {
	return domain.ItemPatch{
		OriginalURL:       &item.OriginalURL,
		EnhancedURL:       &item.EnhancedURL,
		EnhancementStatus: &item.EnhancementStatus,
		ShowingOriginal:   &item.ShowingOriginal,
		Source:            &item.Source,
	}
}

// Fail marks the item's enhancement as failed. URLs are left alone and no
// cost is logged.
func (r *Reconciler) Fail(ctx context.Context, itemID string) error {
	status := domain.TaskFailed
	if _, err := r.items.UpdateItem(ctx, itemID, domain.ItemPatch{EnhancementStatus: &status}); err != nil {
		return fmt.Errorf("reconcile: mark %s failed: %w", itemID, err)
	}
	return nil
}

// ToggleOriginal flips the revert flag and persists only that flag.
func (r *Reconciler) ToggleOriginal(ctx context.Context, itemID string) (*domain.MoodboardItem, error) {
	current, err := r.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("reconcile: load item %s: %w", itemID, err)
	}
	showing := current.ToggleOriginal().ShowingOriginal
	return r.items.UpdateItem(ctx, itemID, domain.ItemPatch{ShowingOriginal: &showing})
}

// Attribution labels log entries, e.g. "AI Enhanced - Lighting".
func Attribution(t domain.EnhancementType) string {
	return "AI Enhanced - " + cases.Title(language.English).String(string(t))
}
