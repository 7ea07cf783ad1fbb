package handlers

import (
	"net/http"
)

// Health answers 503 once the orchestrator is shutting down so load
// balancers stop routing enhancement traffic here.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	if a.Enhancer.Closed() {
		a.json(w, http.StatusServiceUnavailable, map[string]any{"status": "draining", "active_tasks": len(a.Enhancer.Active())})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "ok", "active_tasks": len(a.Enhancer.Active())})
}
