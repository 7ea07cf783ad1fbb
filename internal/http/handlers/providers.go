package handlers

import (
	"net/http"
)

type providerResponse struct {
	ID               string `json:"id"`
	DisplayName      string `json:"display_name"`
	Cost             int    `json:"cost"`
	EstimatedSeconds int    `json:"estimated_seconds"`
	Mode             string `json:"mode"`
	Default          bool   `json:"default"`
}

func (a *App) Providers(w http.ResponseWriter, r *http.Request) {
	reg := a.Enhancer.Registry()
	def := reg.Default().ID
	all := reg.All()
	out := make([]providerResponse, 0, len(all))
	for _, p := range all {
		out = append(out, providerResponse{
			ID:               string(p.ID),
			DisplayName:      p.DisplayName,
			Cost:             p.Cost,
			EstimatedSeconds: int(p.EstimatedDuration.Seconds()),
			Mode:             string(p.Mode),
			Default:          p.ID == def,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"providers": out})
}
