// Package router assembles the chi router: global middleware, the open
// read routes and the API-key protected write routes.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/alumnos-api/internal/access"
	"github.com/aanand-mishra/alumnos-api/internal/config"
	"github.com/aanand-mishra/alumnos-api/internal/http/handlers/student"
	"github.com/aanand-mishra/alumnos-api/internal/http/handlers/system"
	"github.com/aanand-mishra/alumnos-api/internal/http/middleware"
	"github.com/aanand-mishra/alumnos-api/internal/utils/response"
)

// Roster is everything the routes need from roster.Service.
type Roster interface {
	student.Roster
	system.Roster
	middleware.Refresher
}

// New builds the HTTP handler.
//
// Route table:
//
//	GET    /                         banner + reset schedule
//	GET    /health                   status + record count
//	GET    /metrics                  Prometheus
//	GET    /alumnos                  list (activo, curso, nivel filters)
//	GET    /alumnos/{id}             one record
//	GET    /estadisticas             statistics
//	POST   /alumnos                  create             (API key)
//	PUT    /alumnos/{id}             partial update     (API key)
//	DELETE /alumnos/{id}             delete             (API key)
//	PATCH  /alumnos/{id}/desactivar  deactivate         (API key)
//	PATCH  /alumnos/{id}/activar     activate           (API key)
//	POST   /reset-demo               restore the seed   (API key)
func New(cfg *config.Config, logger *slog.Logger, roster Roster) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	gate := access.NewGate(cfg.APIKey)
	deny := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("rejected write",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("reason", err.Error()),
		)
		response.Error(w, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Fresh(roster, logger))

		r.Get("/", system.Root(cfg, roster))
		r.Get("/health", system.Health(cfg, roster))
		r.Get("/estadisticas", system.Statistics(roster))
		r.Get("/alumnos", student.GetList(roster))
		r.Get("/alumnos/{id}", student.GetByID(roster))

		r.Group(func(r chi.Router) {
			r.Use(gate.Middleware(deny))

			r.Post("/alumnos", student.New(roster))
			r.Put("/alumnos/{id}", student.Update(roster))
			r.Delete("/alumnos/{id}", student.Delete(roster))
			r.Patch("/alumnos/{id}/desactivar", student.Deactivate(roster))
			r.Patch("/alumnos/{id}/activar", student.Activate(roster))
			r.Post("/reset-demo", system.Reset(roster))
		})
	})

	return r
}
