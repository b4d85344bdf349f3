package event

import (
	"context"
	"sort"
)

type StubEventRepository struct {
	Events []Event
	Err    error
}

func (s *StubEventRepository) CreateEvent(ctx context.Context, event Event) (Event, error) {
	if s.Err != nil {
		return Event{}, s.Err
	}
	event.Id = len(s.Events) + 1
	s.Events = append(s.Events, event)
	return event, nil
}

func (s *StubEventRepository) GetEvent(ctx context.Context, id int) (Event, error) {
	if s.Err != nil {
		return Event{}, s.Err
	}
	for _, e := range s.Events {
		if e.Id == id {
			return e, nil
		}
	}
	return Event{}, ErrEventNotFound
}

func (s *StubEventRepository) GetAllEvents(ctx context.Context) ([]Event, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

func (s *StubEventRepository) Cleanup() {
	s.Events = []Event{}
}
