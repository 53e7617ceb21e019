package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
)

// maxRequestIDLength caps ids accepted from callers.
const maxRequestIDLength = 64

// RequestID reuses a caller supplied X-Request-ID when it is short and
// printable, otherwise mints a UUID. The id is echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(infra.RequestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		w.Header().Set(infra.RequestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(infra.WithRequestID(r.Context(), rid)))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		if c < '!' || c > '~' {
			return false
		}
	}
	return true
}

func RequestIDFromContext(ctx context.Context) string {
	return infra.RequestIDFrom(ctx)
}
