package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"moodboard/internal/domain"
)

// ItemLister lists a moodboard's items. Optional on the ItemStore.
type ItemLister interface {
	ListItems(ctx context.Context, moodboardID string) ([]domain.MoodboardItem, error)
}

// MoodboardStats reports per-source counts and enhancement totals.
func (a *App) MoodboardStats(w http.ResponseWriter, r *http.Request) {
	lister, ok := a.Items.(ItemLister)
	if !ok {
		a.error(w, http.StatusNotImplemented, "not_implemented", "moodboard listing is not available")
		return
	}
	moodboardID := chi.URLParam(r, "moodboard_id")
	items, err := lister.ListItems(r.Context(), moodboardID)
	if err != nil {
		a.storeError(w, err, "moodboard")
		return
	}
	mb := domain.Moodboard{ID: moodboardID, Items: items}
	if history, ok := a.Log.(History); ok {
		entries, err := history.ListEnhancements(r.Context(), moodboardID)
		if err != nil {
			a.storeError(w, err, "moodboard")
			return
		}
		for _, e := range entries {
			mb.AppendEnhancement(e)
		}
	}
	totalCost := mb.TotalCost()
	if len(mb.EnhancementLog) == 0 {
		if totalCost, err = a.Log.TotalCost(r.Context(), moodboardID); err != nil {
			a.storeError(w, err, "moodboard")
			return
		}
	}

	sources := make(map[string]int)
	for src, n := range mb.SourceBreakdown() {
		sources[string(src)] = n
	}
	a.json(w, http.StatusOK, map[string]any{
		"moodboard_id":   moodboardID,
		"item_count":     len(mb.Items),
		"enhanced_count": mb.EnhancedCount(),
		"sources":        sources,
		"totalCost":      totalCost,
	})
}
