package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/generation"
)

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	generation.State
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type modelRequest struct {
	Model string `json:"model"`
}

func (a *App) respondState(w http.ResponseWriter, r *http.Request, st generation.State, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sessionResponse{SessionID: w.Header().Get(SessionHeader), State: st})
}

func (a *App) SessionState(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	a.respondState(w, r, m.Snapshot(), nil)
}

// SessionPrompt generates the initial image. The call holds the request
// open until the backend answers.
func (a *App) SessionPrompt(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	var req promptRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	st, err := m.SubmitPrompt(r.Context(), req.Prompt)
	a.respondState(w, r, st, err)
}

func (a *App) SessionTransform(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	st, err := m.RequestTransform(r.Context())
	a.respondState(w, r, st, err)
}

func (a *App) SessionRegenerate(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	st, err := m.Regenerate(r.Context())
	a.respondState(w, r, st, err)
}

func (a *App) SessionReset(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	a.respondState(w, r, m.Reset(), nil)
}

func (a *App) SessionModel(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	var req modelRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	st, err := m.SelectModel(req.Model)
	a.respondState(w, r, st, err)
}

func (a *App) SessionInitialModel(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	var req modelRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	st, err := m.SelectInitialModel(req.Model)
	a.respondState(w, r, st, err)
}

func (a *App) SessionStyleParams(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	var req domain.StyleParams
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	st, err := m.SetStyleParams(req)
	a.respondState(w, r, st, err)
}

// SessionRestore loads a history entry into the session.
func (a *App) SessionRestore(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	id, err := historyID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	entry, err := a.History.Get(id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	st, err := m.Restore(entry)
	a.respondState(w, r, st, err)
}

func historyID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, badRequest("id", "must be a numeric history id")
	}
	return id, nil
}
