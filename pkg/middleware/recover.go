package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/logger"
)

// Recover turns a handler panic into a 500 and logs the stack.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logger.FromContext(r.Context()).Error("handler panic",
					"panic", p,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
