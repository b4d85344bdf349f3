package app

import (
	"github.com/eventpulse/eventpulse/internal/config"
	"github.com/eventpulse/eventpulse/internal/event_bus"
	"github.com/eventpulse/eventpulse/internal/metrics"
	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/eventpulse/eventpulse/pkg/event"
	"github.com/eventpulse/eventpulse/pkg/rsvp"
	"github.com/eventpulse/eventpulse/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Metrics

	UserService user.Service
	UserHandler *user.Handler

	EventService event.EventService
	EventHandler *event.EventHandler

	RsvpService rsvp.Service
	RsvpHandler *rsvp.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(storage Storage, clock utils.Clock, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = clock
	deps.EventBus = event_bus.NewEventBus()
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
		deps.Metrics.Subscribe(deps.EventBus)
	}

	deps.UserService = user.NewUserService(storage.Users, deps.Clock)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.EventService = event.NewEventService(storage.Events, deps.EventBus, deps.Clock)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.RsvpService = rsvp.NewService(storage.Rsvps, deps.EventService, deps.UserService, deps.EventBus, deps.Clock)
	deps.RsvpHandler = rsvp.NewHandler(deps.RsvpService)

	return deps
}
