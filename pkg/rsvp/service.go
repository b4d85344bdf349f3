package rsvp

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventpulse/eventpulse/internal/event_bus"
	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/eventpulse/eventpulse/pkg/event"
	"github.com/eventpulse/eventpulse/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	SubmitRsvp(ctx context.Context, eventId int, userId string, status string) (Rsvp, error)
	GetRsvpsByEvent(ctx context.Context, eventId int) ([]Rsvp, error)
	GetRsvpByEventAndUser(ctx context.Context, eventId int, userId string) (Rsvp, error)
}

type EventReader interface {
	GetEvent(ctx context.Context, id int) (event.Event, error)
}

type UserReader interface {
	GetUserByUid(ctx context.Context, uid string) (user.User, error)
}

type ServiceImpl struct {
	repo     Repository
	events   EventReader
	users    UserReader
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, events EventReader, users UserReader, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, events: events, users: users, eventBus: eventBus, clock: clock}
}

// SubmitRsvp records the status of userId for eventId, creating the RSVP on first
// submission and replacing only its status afterwards.
func (s *ServiceImpl) SubmitRsvp(ctx context.Context, eventId int, userId string, status string) (Rsvp, error) {
	parsed, err := ParseStatus(status)
	if err != nil {
		return Rsvp{}, err
	}
	if err := s.checkReferences(ctx, eventId, userId); err != nil {
		return Rsvp{}, err
	}

	stored, created, err := s.repo.UpsertRsvp(ctx, Rsvp{
		EventId:   eventId,
		UserId:    userId,
		Status:    parsed,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return Rsvp{}, err
	}
	log.Debugf("rsvp %d: user %s is %s for event %d (created: %t)", stored.Id, userId, stored.Status, eventId, created)

	payload := event_bus.RsvpSubmitted{
		Id:      stored.Id,
		EventId: stored.EventId,
		UserId:  stored.UserId,
		Status:  string(stored.Status),
		Created: created,
	}
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.RsvpSubmittedType, payload)); err != nil {
		log.Warnf("rsvp %d stored but subscribers failed: %v", stored.Id, err)
	}
	return stored, nil
}

func (s *ServiceImpl) checkReferences(ctx context.Context, eventId int, userId string) error {
	if _, err := s.events.GetEvent(ctx, eventId); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return fmt.Errorf("%w: %d", ErrUnknownEvent, eventId)
		}
		return err
	}
	if _, err := s.users.GetUserByUid(ctx, userId); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownUser, userId)
		}
		return err
	}
	return nil
}

func (s *ServiceImpl) GetRsvpsByEvent(ctx context.Context, eventId int) ([]Rsvp, error) {
	return s.repo.GetRsvpsByEvent(ctx, eventId)
}

func (s *ServiceImpl) GetRsvpByEventAndUser(ctx context.Context, eventId int, userId string) (Rsvp, error) {
	return s.repo.GetRsvpByEventAndUser(ctx, eventId, userId)
}
