package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy defines the CORS headers to emit for matching origins.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// WithCORS answers preflight requests and decorates responses for allowed origins.
// An empty AllowedOrigins list disables it.
func WithCORS(cfg CORSPolicy) Middleware {
	origins := normalizeList(cfg.AllowedOrigins)
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	methods := strings.Join(normalizeList(cfg.AllowedMethods), ", ")
	headers := strings.Join(normalizeList(cfg.AllowedHeaders), ", ")
	maxAge := ""
	if secs := int(cfg.MaxAge.Seconds()); secs > 0 {
		maxAge = strconv.Itoa(secs)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowOrigin, ok := matchOrigin(origin, origins, cfg.AllowCredentials)
			if origin == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if methods != "" {
				h.Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			if maxAge != "" {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// matchOrigin echoes the request origin for credentialed wildcards, since browsers
// reject "*" together with credentials.
func matchOrigin(origin string, allowed []string, allowCredentials bool) (string, bool) {
	for _, candidate := range allowed {
		switch {
		case candidate == "*" && allowCredentials:
			return origin, true
		case candidate == "*":
			return "*", true
		case strings.EqualFold(candidate, origin):
			return origin, true
		}
	}
	return "", false
}
