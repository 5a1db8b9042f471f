package middleware

import (
	"errors"
	"net/http"
	"todo-server/internal/workers"

	"github.com/charmbracelet/log"
)

// Limit runs each request inside a worker pool slot, so no more than
// pool.Capacity() handlers execute at once.
func Limit(pool *workers.Pool, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := pool.Do(r.Context(), func() {
				next.ServeHTTP(w, r)
			})
			if err == nil {
				return
			}

			if errors.Is(err, workers.ErrClosed) {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			// Client went away while queued; nobody is left to answer.
			LogWithContext(r.Context(), logger, log.DebugLevel, "request abandoned while queued", "err", err)
		})
	}
}
