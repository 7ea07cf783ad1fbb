package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"moodboard/internal/domain"
	"moodboard/internal/enhance"
)

type enhanceRequest struct {
	EnhancementType string   `json:"enhancement_type"`
	Prompt          string   `json:"prompt"`
	Provider        string   `json:"provider"`
	Strength        *float64 `json:"strength"`
	MoodboardID     string   `json:"moodboard_id"`
}

type itemResponse struct {
	ID                string `json:"id"`
	MoodboardID       string `json:"moodboard_id"`
	Source            string `json:"source"`
	DisplayURL        string `json:"display_url"`
	OriginalURL       string `json:"original_url,omitempty"`
	EnhancedURL       string `json:"enhanced_url,omitempty"`
	EnhancementStatus string `json:"enhancement_status"`
	ShowingOriginal   bool   `json:"showing_original"`
}

func toItemResponse(item *domain.MoodboardItem) itemResponse {
	return itemResponse{
		ID:                item.ID,
		MoodboardID:       item.MoodboardID,
		Source:            string(item.Source),
		DisplayURL:        item.DisplayURL(),
		OriginalURL:       item.OriginalURL,
		EnhancedURL:       item.EnhancedURL,
		EnhancementStatus: string(item.EnhancementStatus),
		ShowingOriginal:   item.ShowingOriginal,
	}
}

func (a *App) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	item, err := a.Items.GetItem(r.Context(), itemID)
	if err != nil {
		a.storeError(w, err, "item")
		return
	}
	a.json(w, http.StatusOK, toItemResponse(item))
}

// EnhanceItem blocks until the enhancement is terminal.
func (a *App) EnhanceItem(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var body enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, string(domain.KindInvalidRequest), "invalid payload")
		return
	}
	typ, err := domain.ParseEnhancementType(body.EnhancementType)
	if err != nil {
		a.error(w, http.StatusBadRequest, string(domain.KindInvalidRequest), "unsupported enhancement_type")
		return
	}
	var provider domain.ProviderID
	if strings.TrimSpace(body.Provider) != "" {
		if provider, err = enhance.ParseProvider(body.Provider); err != nil {
			a.error(w, http.StatusBadRequest, string(domain.KindInvalidRequest), "unsupported provider")
			return
		}
	}

	itemID := chi.URLParam(r, "item_id")
	url, err := a.Enhancer.Enhance(r.Context(), domain.EnhancementRequest{
		UserID:      userID,
		MoodboardID: body.MoodboardID,
		ItemID:      itemID,
		Type:        typ,
		Prompt:      body.Prompt,
		Provider:    provider,
		Strength:    body.Strength,
	})
	if err != nil {
		a.enhanceError(w, r, itemID, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"item_id": itemID, "enhanced_url": url})
}

func (a *App) EnhancementStatus(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	task, ok := a.Enhancer.Status(itemID)
	if !ok {
		item, err := a.Items.GetItem(r.Context(), itemID)
		if err != nil {
			a.storeError(w, err, "item")
			return
		}
		a.json(w, http.StatusOK, map[string]any{
			"item_id": itemID,
			"status":  domain.TaskIdle,
			"stored":  item.EnhancementStatus,
		})
		return
	}
	resp := map[string]any{
		"item_id":  itemID,
		"status":   task.Status,
		"progress": task.Progress,
		"provider": task.Provider,
	}
	if task.TaskID != "" {
		resp["task_id"] = task.TaskID
	}
	if task.ResultURL != "" {
		resp["result_url"] = task.ResultURL
	}
	if task.ErrorKind != domain.KindNone {
		resp["error"] = map[string]string{
			"code":    string(task.ErrorKind),
			"message": enhance.UserMessage(task.ErrorKind),
		}
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) ToggleOriginal(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	item, err := a.Reconciler.ToggleOriginal(r.Context(), itemID)
	if err != nil {
		a.storeError(w, err, "item")
		return
	}
	a.json(w, http.StatusOK, toItemResponse(item))
}

// enhanceError maps classified failures onto HTTP statuses.
func (a *App) enhanceError(w http.ResponseWriter, r *http.Request, itemID string, err error) {
	var e *enhance.EnhancementError
	switch {
	case errors.As(err, &e):
		a.error(w, statusForKind(e.Kind), string(e.Kind), e.Message)
	case errors.Is(err, enhance.ErrClosed):
		a.error(w, http.StatusServiceUnavailable, "unavailable", "enhancement service is shutting down")
	case errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusGatewayTimeout, string(domain.KindTimeout), enhance.UserMessage(domain.KindTimeout))
	case errors.Is(err, context.Canceled):
		a.Logger.Info().Str("item_id", itemID).Msg("enhance: client left, task continues")
	default:
		a.Logger.Error().Err(err).Str("item_id", itemID).Str("request_path", r.URL.Path).Msg("enhance: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "enhancement failed")
	}
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidRequest, domain.KindUnsupportedInputFormat, domain.KindSourceUnreachable, domain.KindInvalidImageFormat:
		return http.StatusBadRequest
	case domain.KindInsufficientCredits:
		return http.StatusPaymentRequired
	case domain.KindItemBusy:
		return http.StatusConflict
	case domain.KindProviderOutOfCredits:
		return http.StatusServiceUnavailable
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (a *App) storeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", what+" not found")
		return
	}
	a.Logger.Error().Err(err).Msg("store: " + what)
	a.error(w, http.StatusInternalServerError, "internal", "failed to load "+what)
}
