package handlers

import (
	"net/http"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": a.Sessions.Len(),
		"history":  a.History.Len(),
	})
}

// BackendHealth probes the generation backend.
func (a *App) BackendHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.Remote.Health(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"initial":        domain.Models(domain.StageInitial),
		"final":          domain.Models(domain.StageFinal),
		"defaultInitial": domain.DefaultInitialModel,
		"defaultFinal":   domain.DefaultFinalModel,
	})
}
