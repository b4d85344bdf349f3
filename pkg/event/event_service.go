package event

import (
	"context"
	"fmt"

	"github.com/eventpulse/eventpulse/internal/event_bus"
	"github.com/eventpulse/eventpulse/internal/utils"
	log "github.com/sirupsen/logrus"
)

type EventService interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id int) (Event, error)
	GetAllEvents(ctx context.Context) ([]Event, error)
	// FindEvents returns GetAllEvents narrowed by state, evaluated at the current time.
	FindEvents(ctx context.Context, state FilterState) ([]Event, error)
}

type EventServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewEventService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock) *EventServiceImpl {
	return &EventServiceImpl{repo: repo, eventBus: eventBus, clock: clock}
}

// CreateEvent persists a new event. The id, attendee count and creation time are
// always assigned here; a missing price becomes DefaultPrice.
func (s *EventServiceImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	price, err := NormalizePrice(event.Price)
	if err != nil {
		return Event{}, fmt.Errorf("invalid price %q: %w", event.Price, err)
	}
	event.Id = 0
	event.Price = price
	event.Attendees = 0
	event.CreatedAt = s.clock.Now()
	event.Description = nilIfEmpty(event.Description)
	event.ImageUrl = nilIfEmpty(event.ImageUrl)

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, err
	}
	log.Debugf("created event %d (%s)", created.Id, created.Title)

	payload := event_bus.EventCreated{
		Id:       created.Id,
		Title:    created.Title,
		Category: created.Category,
		Date:     created.Date,
		Free:     !created.IsPaid(),
	}
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.EventCreatedType, payload)); err != nil {
		log.Warnf("event %d created but subscribers failed: %v", created.Id, err)
	}
	return created, nil
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id int) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *EventServiceImpl) GetAllEvents(ctx context.Context) ([]Event, error) {
	return s.repo.GetAllEvents(ctx)
}

func (s *EventServiceImpl) FindEvents(ctx context.Context, state FilterState) ([]Event, error) {
	events, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(events, state, s.clock.Now()), nil
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
