package app

import (
	"net/http"
	"time"

	"github.com/eventpulse/eventpulse/internal/config"
	"github.com/eventpulse/eventpulse/internal/rest"
	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Events
	r.HandleFunc("/api/events", deps.EventHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events/{id}", deps.EventHandler.GetEvent).Methods("GET")

	// RSVPs
	r.HandleFunc("/api/rsvp", deps.RsvpHandler.SubmitRsvp).Methods("POST")
	r.HandleFunc("/api/events/{id}/rsvps", deps.RsvpHandler.GetEventRsvps).Methods("GET")
	r.HandleFunc("/api/events/{id}/rsvps/{userId}", deps.RsvpHandler.GetUserRsvp).Methods("GET")

	// Users
	r.HandleFunc("/api/users", deps.UserHandler.GetUsers).Methods("GET")
	r.HandleFunc("/api/users", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/users/{id}", deps.UserHandler.GetUser).Methods("GET")

	r.HandleFunc("/api/health", healthHandler(deps.Clock)).Methods("GET")

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}
}

type HealthDTO struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// healthHandler godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthDTO
// @Router /api/health [get]
func healthHandler(clock utils.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest.WriteJSON(w, http.StatusOK, HealthDTO{
			Status:    "ok",
			Timestamp: clock.Now().UTC().Format(time.RFC3339),
		})
	}
}
