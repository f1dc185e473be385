package middleware

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/alumnos-api/internal/utils/response"
)

// Refresher is implemented by roster.Service.
type Refresher interface {
	EnsureFresh() (bool, error)
}

// Fresh runs the demo reset pre-check before every request, so an
// expired roster is rolled back before the handler (or the API key
// check) sees it.
func Fresh(ref Refresher, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reset, err := ref.EnsureFresh()
			if err != nil {
				response.Error(w, err)
				return
			}
			if reset {
				logger.Info("demo window expired, roster restored before request",
					slog.String("path", r.URL.Path))
			}
			next.ServeHTTP(w, r)
		})
	}
}
