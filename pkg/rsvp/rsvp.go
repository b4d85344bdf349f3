package rsvp

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRsvpNotFound     = errors.New("rsvp not found")
	ErrInvalidStatus    = errors.New("invalid rsvp status")
	ErrInvalidReference = errors.New("rsvp references a missing entity")
	ErrUnknownEvent     = fmt.Errorf("%w: event does not exist", ErrInvalidReference)
	ErrUnknownUser      = fmt.Errorf("%w: user does not exist", ErrInvalidReference)
)

type Status string

const (
	Going    Status = "going"
	Maybe    Status = "maybe"
	NotGoing Status = "not-going"
)

var Statuses = []Status{Going, Maybe, NotGoing}

func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Rsvp is a user's attendance intent for one event. There is at most one per
// (EventId, UserId).
type Rsvp struct {
	Id      int
	EventId int
	// UserId is the uid of the responding user.
	UserId string
	Status Status
	// CreatedAt is set by the first submission and kept on status changes.
	CreatedAt time.Time
}
