package handlers

import (
	"net/http"
)

func (a *App) Credits(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	balance, err := a.Gate.Refresh(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("credits: refresh failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load credits")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"current": balance.Current,
		"monthly": balance.Monthly,
		"tier":    balance.Tier,
	})
}
