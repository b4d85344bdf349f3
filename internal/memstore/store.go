// Package memstore keeps users, events and RSVPs in process memory. A single Store
// implements the user, event and rsvp repositories so that cross-entity checks and the
// attendee recount happen under one lock.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/eventpulse/eventpulse/pkg/event"
	"github.com/eventpulse/eventpulse/pkg/rsvp"
	"github.com/eventpulse/eventpulse/pkg/user"
)

type rsvpKey struct {
	eventId int
	userId  string
}

type Store struct {
	mu sync.RWMutex

	nextUserId  int
	nextEventId int
	nextRsvpId  int

	users       map[int]user.User
	userByUid   map[string]int
	userByEmail map[string]int
	events      map[int]event.Event
	rsvps       map[rsvpKey]rsvp.Rsvp
}

func New() *Store {
	return &Store{
		users:       make(map[int]user.User),
		userByUid:   make(map[string]int),
		userByEmail: make(map[string]int),
		events:      make(map[int]event.Event),
		rsvps:       make(map[rsvpKey]rsvp.Rsvp),
	}
}

var (
	_ user.Repo        = (*Store)(nil)
	_ event.Repository = (*Store)(nil)
	_ rsvp.Repository  = (*Store)(nil)
)

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.userByEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}
	s.nextUserId++
	u.Id = s.nextUserId
	s.users[u.Id] = u
	s.userByUid[u.Uid] = u.Id
	s.userByEmail[u.Email] = u.Id
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUid(_ context.Context, uid string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userByUid[uid]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userByEmail[email]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetAllUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	users := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Id < users[j].Id
	})
	return users, nil
}

func (s *Store) CreateEvent(_ context.Context, e event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventId++
	e.Id = s.nextEventId
	e.Attendees = 0
	e = cloneEvent(e)
	s.events[e.Id] = e
	return cloneEvent(e), nil
}

func (s *Store) GetEvent(_ context.Context, id int) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return event.Event{}, event.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (s *Store) GetAllEvents(_ context.Context) ([]event.Event, error) {
	s.mu.RLock()
	events := make([]event.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, cloneEvent(e))
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Id < events[j].Id
	})
	return events, nil
}

func (s *Store) UpsertRsvp(_ context.Context, r rsvp.Rsvp) (rsvp.Rsvp, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[r.EventId]
	if !ok {
		return rsvp.Rsvp{}, false, rsvp.ErrUnknownEvent
	}
	if _, ok := s.userByUid[r.UserId]; !ok {
		return rsvp.Rsvp{}, false, rsvp.ErrUnknownUser
	}

	key := rsvpKey{eventId: r.EventId, userId: r.UserId}
	existing, found := s.rsvps[key]
	if found {
		existing.Status = r.Status
		r = existing
	} else {
		s.nextRsvpId++
		r.Id = s.nextRsvpId
	}
	s.rsvps[key] = r

	e.Attendees = s.countGoing(r.EventId)
	s.events[e.Id] = e
	return r, !found, nil
}

// countGoing must be called with the write lock held.
func (s *Store) countGoing(eventId int) int {
	count := 0
	for key, r := range s.rsvps {
		if key.eventId == eventId && r.Status == rsvp.Going {
			count++
		}
	}
	return count
}

func (s *Store) GetRsvpsByEvent(_ context.Context, eventId int) ([]rsvp.Rsvp, error) {
	s.mu.RLock()
	rsvps := make([]rsvp.Rsvp, 0)
	for key, r := range s.rsvps {
		if key.eventId == eventId {
			rsvps = append(rsvps, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(rsvps, func(i, j int) bool { return rsvps[i].Id < rsvps[j].Id })
	return rsvps, nil
}

func (s *Store) GetRsvpByEventAndUser(_ context.Context, eventId int, userId string) (rsvp.Rsvp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rsvps[rsvpKey{eventId: eventId, userId: userId}]
	if !ok {
		return rsvp.Rsvp{}, rsvp.ErrRsvpNotFound
	}
	return r, nil
}

func cloneEvent(e event.Event) event.Event {
	e.Description = cloneString(e.Description)
	e.ImageUrl = cloneString(e.ImageUrl)
	return e
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
