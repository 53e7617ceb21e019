package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/stylemix"
)

type jobStatusResponse struct {
	JobID string `json:"job_id"`
	domain.JobState
}

type assetResponse struct {
	Filename string              `json:"filename"`
	Image    domain.ImagePayload `json:"image"`
}

// StyleMixSubmit uploads an image and starts a seed-variation job. The image
// is the multipart "file" part, or the session's current image when the
// "source" field names one (initial or final). Parameters come as JSON in the
// "params" field; omitted values take the defaults.
func (a *App) StyleMixSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload())
	if err := r.ParseMultipartForm(a.maxUpload()); err != nil {
		a.fail(w, r, badRequest("file", "multipart form with an image is required"))
		return
	}
	var params domain.StyleMixingParams
	if raw := strings.TrimSpace(r.FormValue("params")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			a.fail(w, r, badRequest("params", "invalid JSON parameters"))
			return
		}
	}
	image, err := a.mixSource(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	sub, err := a.StyleMix.Start(r.Context(), image, params)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, sub)
}

func (a *App) mixSource(w http.ResponseWriter, r *http.Request) (domain.ImagePayload, error) {
	switch source := r.FormValue("source"); source {
	case "":
	case "initial", "final":
		st := a.session(w, r).Snapshot()
		if source == "initial" {
			return st.InitialImage, nil
		}
		return st.FinalImage, nil
	default:
		return domain.ImagePayload{}, badRequest("source", "must be initial or final")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return domain.ImagePayload{}, badRequest("file", "image file is required")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("stylemix: read upload: %w", err)
	}
	image := domain.ImageFromBytes(data, header.Header.Get("Content-Type"))
	if !strings.HasPrefix(image.MIMEType, "image/") {
		return domain.ImagePayload{}, fmt.Errorf("stylemix: upload is %s: %w", image.MIMEType, domain.ErrFormat)
	}
	return image, nil
}

// StyleMixStatus performs one status call against the backend.
func (a *App) StyleMixStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	st, err := a.StyleMix.Poll(r.Context(), jobID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, jobStatusResponse{JobID: jobID, JobState: st})
}

// StyleMixDownload streams the result archive, or with ?format=images the
// extracted images as data URLs.
func (a *App) StyleMixDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	archive, err := a.StyleMix.Download(r.Context(), jobID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "images" {
		assets, err := stylemix.Extract(archive)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		items := make([]assetResponse, 0, len(assets))
		for _, asset := range assets {
			items = append(items, assetResponse{Filename: asset.Filename, Image: asset.Image})
		}
		a.json(w, http.StatusOK, map[string]any{"job_id": jobID, "items": items})
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("job_id", jobID).Int("bytes", len(archive)).Msg("style mixing result downloaded")
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "style_mix_"+jobID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
