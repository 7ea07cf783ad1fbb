package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type enhancementEntry struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"item_id"`
	OriginalURL     string    `json:"original_url"`
	EnhancedURL     string    `json:"enhanced_url"`
	EnhancementType string    `json:"enhancement_type"`
	Provider        string    `json:"provider"`
	Cost            int       `json:"cost"`
	Attribution     string    `json:"attribution"`
	Timestamp       time.Time `json:"timestamp"`
}

func (a *App) MoodboardTotalCost(w http.ResponseWriter, r *http.Request) {
	moodboardID := chi.URLParam(r, "moodboard_id")
	total, err := a.Log.TotalCost(r.Context(), moodboardID)
	if err != nil {
		a.storeError(w, err, "moodboard")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"moodboard_id": moodboardID, "totalCost": total})
}

func (a *App) MoodboardEnhancements(w http.ResponseWriter, r *http.Request) {
	history, ok := a.Log.(History)
	if !ok {
		a.error(w, http.StatusNotImplemented, "not_implemented", "enhancement history is not available")
		return
	}
	moodboardID := chi.URLParam(r, "moodboard_id")
	entries, err := history.ListEnhancements(r.Context(), moodboardID)
	if err != nil {
		a.storeError(w, err, "moodboard")
		return
	}
	out := make([]enhancementEntry, 0, len(entries))
	total := 0
	for _, e := range entries {
		total += e.Cost
		out = append(out, enhancementEntry{
			ID:              e.ID,
			ItemID:          e.ItemID,
			OriginalURL:     e.OriginalURL,
			EnhancedURL:     e.EnhancedURL,
			EnhancementType: string(e.EnhancementType),
			Provider:        string(e.Provider),
			Cost:            e.Cost,
			Attribution:     e.Attribution,
			Timestamp:       e.Timestamp,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"moodboard_id": moodboardID, "enhancements": out, "totalCost": total})
}
