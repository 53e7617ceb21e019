package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fasion-image-generator-project/FashionFusion/internal/messages"
)

type window struct {
	count int
	until time.Time
}

// fixedWindow counts hits per key in consecutive windows of length per.
type fixedWindow struct {
	limit int
	per   time.Duration

	mu      sync.Mutex
	windows map[string]*window
}

// allow records a hit for key and reports whether it fits the current
// window, together with the time left until the window resets.
func (f *fixedWindow) allow(key string, now time.Time) (bool, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[key]
	if !ok || !now.Before(w.until) {
		f.prune(now)
		w = &window{until: now.Add(f.per)}
		f.windows[key] = w
	}
	if w.count >= f.limit {
		return false, w.until.Sub(now)
	}
	w.count++
	return true, 0
}

func (f *fixedWindow) prune(now time.Time) {
	for key, w := range f.windows {
		if !now.Before(w.until) {
			delete(f.windows, key)
		}
	}
}

// RateLimit admits limit requests per client IP in each window of length
// per. A non-positive limit disables the check. Rejections carry Retry-After
// and a message in the request locale.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	fw := &fixedWindow{limit: limit, per: per, windows: make(map[string]*window)}
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := fw.allow(ClientIP(r), time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(wait/time.Second)+1))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{
				"code":    "rate_limited",
				"message": messages.Status(LocaleFromContext(r.Context()), http.StatusTooManyRequests),
			}})
		})
	}
}
