package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback language.Tag
		country  string
		want     language.Tag
	}{
		{
			name:    "x-locale overrides",
			setup:   func(r *http.Request) { r.Header.Set("X-Locale", "en") },
			country: "KR",
			want:    language.English,
		},
		{
			name:  "accept-language korean",
			setup: func(r *http.Request) { r.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8") },
			want:  language.Korean,
		},
		{
			name:  "accept-language english",
			setup: func(r *http.Request) { r.Header.Set("Accept-Language", "en-US,en;q=0.9") },
			want:  language.English,
		},
		{
			name:  "unsupported language falls back to korean",
			setup: func(r *http.Request) { r.Header.Set("Accept-Language", "sw") },
			want:  language.Korean,
		},
		{name: "korean country", country: "KR", fallback: language.English, want: language.Korean},
		{name: "other country", country: "US", want: language.English},
		{name: "configured fallback", fallback: language.English, want: language.English},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			fallback := tc.fallback
			if fallback == language.Und {
				fallback = language.Korean
			}
			assert.Equal(t, tc.want, detectLocale(req, fallback, tc.country))
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CountryLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "kr")
				r.Header.Set("CF-IPCountry", "us")
			},
			want: "KR",
		},
		{
			name:  "accept-language region",
			setup: func(r *http.Request) { r.Header.Set("Accept-Language", "en-GB,en;q=0.9") },
			want:  "GB",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) (string, error) {
				assert.Equal(t, "203.0.113.4", ip)
				return "kr", nil
			},
			want: "KR",
		},
		{
			name:  "explicit locale region",
			setup: func(r *http.Request) { r.Header.Set("X-Locale", "ko-KR") },
			want:  "KR",
		},
		{
			name:  "bare language has no region",
			setup: func(r *http.Request) { r.Header.Set("Accept-Language", "ko") },
			want:  "",
		},
		{
			name:  "cloudflare unknown is ignored",
			setup: func(r *http.Request) { r.Header.Set("CF-IPCountry", "XX") },
			want:  "",
		},
		{
			name:     "resolver error returns empty",
			resolver: func(ip string) (string, error) { return "", errors.New("boom") },
			want:     "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			assert.Equal(t, tc.want, ResolveCountry(req, tc.resolver))
		})
	}
}

func TestI18NStoresLocale(t *testing.T) {
	var got language.Tag
	h := I18N("en", func(string) (string, error) { return "KR", nil })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
		assert.Equal(t, "KR", CountryFromContext(r.Context()))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, language.Korean, got)
	assert.Equal(t, "ko", rec.Header().Get("Content-Language"))

	assert.Equal(t, language.Korean, LocaleFromContext(context.Background()))
}
