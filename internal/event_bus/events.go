package event_bus

import "time"

const (
	EventCreatedType  EventType = "event.created"
	RsvpSubmittedType EventType = "rsvp.submitted"
)

type EventCreated struct {
	Id       int
	Title    string
	Category string
	Date     time.Time
	Free     bool
}

type RsvpSubmitted struct {
	Id      int
	EventId int
	UserId  string
	Status  string
	// Created is false when an existing RSVP had its status replaced.
	Created bool
}
