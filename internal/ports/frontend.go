package ports

import (
	"github.com/mikey/email-defender/internal/core"
)

// Frontend defines a collaborator that runs alongside a game session
type Frontend interface {
	// Start starts the frontend
	Start() error

	// Stop stops the frontend and waits for its goroutines to exit
	Stop() error
}

// SessionView is the read side of a game session
type SessionView interface {
	Snapshot() core.SessionSnapshot
}

// GameController is the public action API of a game session
type GameController interface {
	SessionView

	// ProcessAction applies an action to an email in the inbox
	ProcessAction(emailID string, kind core.ActionKind) core.Outcome

	// PurchaseUpgrade buys the next level of an upgrade track
	PurchaseUpgrade(track core.Track) bool
}

// GameSession is the full control surface a player frontend drives
type GameSession interface {
	GameController

	Pause()
	Resume()
	Quit()
}
