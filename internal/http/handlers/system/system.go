// Package system holds the handlers that are not about a single student:
// the service banner, health, statistics and the demo reset.
package system

import (
	"net/http"
	"time"

	"github.com/aanand-mishra/alumnos-api/internal/config"
	"github.com/aanand-mishra/alumnos-api/internal/roster"
	"github.com/aanand-mishra/alumnos-api/internal/types"
	"github.com/aanand-mishra/alumnos-api/internal/utils/response"
)

// Roster is the subset of roster.Service these handlers need.
type Roster interface {
	Info() (roster.Info, error)
	Statistics() (types.Statistics, error)
	Reset() (time.Time, error)
}

// MsgReset confirms POST /reset-demo.
const MsgReset = "Datos de demostración restablecidos"

type bannerResponse struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Docs        string `json:"docs"`
	ResetWindow string `json:"reset_window"`
	LastReset   string `json:"last_reset"`
	NextReset   string `json:"next_reset"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
	Total       int    `json:"total_alumnos"`
}

type resetResponse struct {
	Message string `json:"message"`
	ResetAt string `json:"reset_at"`
}

// Root handles GET /: a banner with the reset schedule, so demo users
// know when their changes will disappear.
func Root(cfg *config.Config, r Roster) http.HandlerFunc {
	docs := "not available"
	if cfg.IsProduction() {
		docs = "disabled"
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		info, err := r.Info()
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, bannerResponse{
			Message:     cfg.AppName + " - API funcionando",
			Status:      "healthy",
			Environment: cfg.Env,
			Version:     cfg.Version,
			Docs:        docs,
			ResetWindow: info.Window.String(),
			LastReset:   info.LastResetAt.Format(time.RFC3339),
			NextReset:   info.NextResetAt.Format(time.RFC3339),
		})
	}
}

// Health handles GET /health.
func Health(cfg *config.Config, r Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		info, err := r.Info()
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, healthResponse{
			Status:      "healthy",
			Environment: cfg.Env,
			Version:     cfg.Version,
			Timestamp:   info.Now.Format(time.RFC3339),
			Total:       info.Count,
		})
	}
}

// Statistics handles GET /estadisticas.
func Statistics(r Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		stats, err := r.Statistics()
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, stats)
	}
}

// Reset handles POST /reset-demo.
func Reset(r Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		at, err := r.Reset()
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, resetResponse{
			Message: MsgReset,
			ResetAt: at.Format(time.RFC3339),
		})
	}
}
