package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/messages"
	"github.com/fasion-image-generator-project/FashionFusion/internal/middleware"
)

type errorBody struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	BackendStatus int    `json:"backend_status,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func badRequest(field, reason string) error {
	return domain.Invalid(field, reason)
}

// classify maps a core error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	var se *domain.ServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrFormat):
		return http.StatusBadRequest, "format"
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusConflict, "confirmation_required"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, domain.ErrStale):
		return http.StatusConflict, "stale"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway, "network"
	case errors.As(err, &se):
		return http.StatusBadGateway, "backend_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

// fail writes err in the request locale. Server-side failures are logged
// with the request logger.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	body := errorBody{
		Code:          code,
		Message:       messages.Describe(middleware.LocaleFromContext(r.Context()), err),
		BackendStatus: domain.StatusOf(err),
	}
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("code", code).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("code", code).Msg("request rejected")
	}
	a.json(w, status, errorResponse{Error: body})
}
