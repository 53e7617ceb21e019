package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fasion-image-generator-project/FashionFusion/internal/generation"
	"github.com/fasion-image-generator-project/FashionFusion/internal/history"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/metrics"
	"github.com/fasion-image-generator-project/FashionFusion/internal/middleware"
	"github.com/fasion-image-generator-project/FashionFusion/internal/preferences"
	"github.com/fasion-image-generator-project/FashionFusion/internal/remote"
	"github.com/fasion-image-generator-project/FashionFusion/internal/stylemix"
)

// SessionHeader carries the session id in both directions.
const SessionHeader = "X-Session-ID"

// DefaultMaxUpload applies when App.MaxUpload is unset.
const DefaultMaxUpload = 10 << 20

type App struct {
	Sessions  *generation.Sessions
	History   *history.Manager
	Theme     *preferences.Theme
	Presets   *preferences.Presets
	StyleMix  *stylemix.Runner
	Remote    remote.Client
	Metrics   *metrics.Recorder
	Logger    *infra.Logger
	MaxUpload int64
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v. Unknown fields are ignored.
func (a *App) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("body", "invalid JSON payload")
	}
	return nil
}

// session resolves the caller's machine, echoes its id and aligns the error
// message language with the request.
func (a *App) session(w http.ResponseWriter, r *http.Request) *generation.Machine {
	id, m := a.Sessions.Get(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, id)
	m.SetLocale(middleware.LocaleFromContext(r.Context()))
	return m
}

func (a *App) maxUpload() int64 {
	if a.MaxUpload > 0 {
		return a.MaxUpload
	}
	return DefaultMaxUpload
}
