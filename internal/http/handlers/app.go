package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"moodboard/internal/domain"
	"moodboard/internal/enhance"
	"moodboard/internal/infra"
	"moodboard/internal/middleware"
)

// Enhancer is the slice of the orchestrator the handlers call.
type Enhancer interface {
	Enhance(ctx context.Context, req domain.EnhancementRequest) (string, error)
	Status(itemID string) (domain.EnhancementTask, bool)
	Registry() *enhance.Registry
	Active() []domain.EnhancementTask
	Closed() bool
}

// History lists a moodboard's enhancement log. Optional on the EnhancementLog.
type History interface {
	ListEnhancements(ctx context.Context, moodboardID string) ([]domain.EnhancementLogEntry, error)
}

type App struct {
	Enhancer   Enhancer
	Gate       *enhance.CreditGate
	Reconciler *enhance.Reconciler
	Items      domain.ItemStore
	Log        domain.EnhancementLog
	Logger     *infra.Logger
}

// NewApp wires the handlers. The reconciler is built from the same stores the
// orchestrator writes to.
func NewApp(enhancer Enhancer, credits *enhance.CreditGate, items domain.ItemStore, log domain.EnhancementLog, logger *infra.Logger) *App {
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	return &App{
		Enhancer:   enhancer,
		Gate:       credits,
		Reconciler: enhance.NewReconciler(items, log),
		Items:      items,
		Log:        log,
		Logger:     logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
