package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/history"
)

func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	items := a.History.List()
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (a *App) HistoryGet(w http.ResponseWriter, r *http.Request) {
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
	a.json(w, http.StatusOK, entry)
}

func (a *App) HistoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := historyID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.History.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HistoryClear wipes the history; the caller confirms with ?confirm=true.
func (a *App) HistoryClear(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := a.History.Clear(r.Context(), confirmed); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) HistoryExport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := a.History.Export()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HistoryImport accepts the export file either as the raw body or as the
// "file" part of a multipart form.
func (a *App) HistoryImport(w http.ResponseWriter, r *http.Request) {
	mode, err := history.ParseImportMode(r.URL.Query().Get("mode"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := a.readImport(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.History.Import(r.Context(), data, mode)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"imported": n, "total": a.History.Len(), "mode": mode})
}

func (a *App) readImport(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload())
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, badRequest("file", "history file is required")
		}
		defer file.Close()
		src = file
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, badRequest("file", "history file exceeds the upload limit")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("history: import: empty file: %w", domain.ErrFormat)
	}
	return data, nil
}
