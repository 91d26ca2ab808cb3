package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

// Limiter decides per client key.
type Limiter interface {
	Allow(key string) bool
	RetryAfter(key string) time.Duration
}

// RateLimit rejects requests over the client's budget with 429. Clients are
// keyed by the first X-Forwarded-For hop, else the remote IP. Health probes
// are never limited.
func RateLimit(l Limiter, onLimited func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}
			key := clientKey(r)
			if !l.Allow(key) {
				if onLimited != nil {
					onLimited()
				}
				secs := int(math.Ceil(l.RetryAfter(key).Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				writeError(w, apperrors.HTTPStatusCode(apperrors.ErrRateLimited), apperrors.ErrRateLimited.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
