package user

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type User struct {
	Id int
	// Uid is the public identifier RSVPs refer to.
	Uid       string
	Name      string
	Email     string
	CreatedAt time.Time
}
