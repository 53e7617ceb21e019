package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/generation"
	"github.com/fasion-image-generator-project/FashionFusion/internal/preferences"
)

type themeRequest struct {
	Theme string `json:"theme"`
}

func (a *App) ThemeGet(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, themeRequest{Theme: a.Theme.Get()})
}

func (a *App) ThemeSet(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	theme, err := a.Theme.Set(r.Context(), req.Theme)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, themeRequest{Theme: theme})
}

func (a *App) ThemeToggle(w http.ResponseWriter, r *http.Request) {
	theme, err := a.Theme.Toggle(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, themeRequest{Theme: theme})
}

type presetsResponse struct {
	Presets []preferences.Preset `json:"presets"`
	Active  string               `json:"active,omitempty"`
	Params  domain.StyleParams   `json:"params"`
}

type paramRequest struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type savePresetRequest struct {
	Name string `json:"name"`
	// Params defaults to the session's current parameters.
	Params *domain.StyleParams `json:"params,omitempty"`
}

func (a *App) presets(w http.ResponseWriter, r *http.Request, st generation.State, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, presetsResponse{Presets: a.Presets.All(), Active: st.ActivePreset, Params: st.StyleParams})
}

// PresetsList returns every preset with the session's working parameters.
func (a *App) PresetsList(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	a.presets(w, r, m.Snapshot(), nil)
}

// PresetsParam adjusts one parameter and clears the active preset.
func (a *App) PresetsParam(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	var req paramRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	st, err := m.SetStyleParam(req.Name, req.Value)
	a.presets(w, r, st, err)
}

func (a *App) PresetsApply(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	preset, err := a.Presets.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	st, err := m.ApplyPreset(preset.Name, preset.Params)
	a.presets(w, r, st, err)
}

func (a *App) PresetsSave(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	var req savePresetRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	params := m.Snapshot().StyleParams
	if req.Params != nil {
		params = *req.Params
	}
	preset, err := a.Presets.Save(r.Context(), req.Name, params)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, preset)
}

func (a *App) PresetsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Presets.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) PresetsReset(w http.ResponseWriter, r *http.Request) {
	m := a.session(w, r)
	st, err := m.ResetStyleParams()
	a.presets(w, r, st, err)
}
