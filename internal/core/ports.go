package core

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyStarted is returned when Start is called on a session that is not stopped
	ErrAlreadyStarted = errors.New("game already started")
	// ErrGameOver is returned when Start is called after the session ended
	ErrGameOver = errors.New("game is over")
	// ErrUnknownTrack is returned when an upgrade track name cannot be resolved
	ErrUnknownTrack = errors.New("unknown upgrade track")
	// ErrUnknownAction is returned when an action name cannot be resolved
	ErrUnknownAction = errors.New("unknown action")
)

// Scheduler runs a task periodically
type Scheduler interface {
	// Every runs task as soon as possible and then once per interval until
	// cancel is called. Task must run on another goroutine than the caller.
	// Cancel must not block, it may be called from inside task.
	Every(interval time.Duration, task func()) (cancel func())
}

// Notifier receives level-up and game-over events
type Notifier interface {
	Notify(event Event)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(event Event)

// Notify calls f(event)
func (f NotifierFunc) Notify(event Event) {
	f(event)
}
