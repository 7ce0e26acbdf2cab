package core

import (
	"fmt"
	"strings"
	"time"
)

// Category is the fixed classification of an email
type Category string

const (
	CategoryWork            Category = "work"
	CategoryPersonal        Category = "personal"
	CategorySubscription    Category = "subscription"
	CategoryAccount         Category = "account"
	CategoryPhishing        Category = "phishing"
	CategoryPromotional     Category = "promotional"
	CategoryScam            Category = "scam"
	CategoryMalware         Category = "malware"
	CategoryUrgent          Category = "urgent"
	CategoryChain           Category = "chain"
	CategoryLargeAttachment Category = "large-attachment"
)

// IsSpam reports whether the category is one of the spam kinds
func (c Category) IsSpam() bool {
	switch c {
	case CategoryPhishing, CategoryPromotional, CategoryScam, CategoryMalware:
		return true
	}
	return false
}

// Email represents one message in the game. Emails are values and are
// never modified after the generator creates them.
type Email struct {
	ID         string
	Sender     string
	Subject    string
	Body       string
	Size       int
	Category   Category
	Urgent     bool
	ReceivedAt time.Time
}

// IsSpam reports whether the email's category is a spam kind
func (e Email) IsSpam() bool {
	return e.Category.IsSpam()
}

// IsLegitimate is the negation of IsSpam
func (e Email) IsLegitimate() bool {
	return !e.IsSpam()
}

// DisplayString returns the inbox list label for the email
func (e Email) DisplayString() string {
	prefix := ""
	if e.Urgent {
		prefix = "[URGENT] "
	}
	return prefix + e.Sender + " - " + e.Subject
}

// ResponseOptions returns the reply choices offered for the email's category
func (e Email) ResponseOptions() []string {
	switch e.Category {
	case CategoryWork:
		return []string{"Complete Task", "Schedule Meeting", "Request More Info"}
	case CategoryPersonal:
		return []string{"Reply", "Thank", "Schedule"}
	case CategorySubscription:
		return []string{"Confirm", "Change Preferences"}
	case CategoryAccount:
		return []string{"Acknowledge", "Update Details"}
	case CategoryUrgent:
		return []string{"Attend Immediately", "Delegate", "Schedule"}
	case CategoryChain:
		return []string{"Forward", "Reply All", "Reply"}
	default:
		return []string{"Reply"}
	}
}

// ActionKind is a player disposition applied to an email
type ActionKind string

const (
	ActionRespond  ActionKind = "respond"
	ActionDelete   ActionKind = "delete"
	ActionMarkSpam ActionKind = "mark_spam"
	ActionIgnore   ActionKind = "ignore"
)

// ParseAction converts user input into an ActionKind
func ParseAction(s string) (ActionKind, error) {
	switch kind := ActionKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case ActionRespond, ActionDelete, ActionMarkSpam, ActionIgnore:
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// State is the lifecycle state of a game session
type State string

const (
	StateStopped  State = "stopped"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateGameOver State = "game_over"
)

// GameOverReason identifies why a session ended
type GameOverReason string

const (
	ReasonInboxFull         GameOverReason = "inbox_full"
	ReasonTooManyWrongMoves GameOverReason = "too_many_legitimate_mishandled"
	ReasonTooManyMissed     GameOverReason = "too_many_critical_missed"
	ReasonQuit              GameOverReason = "quit"
)

// EventKind distinguishes the notifications sent to the frontend
type EventKind string

const (
	EventLevelUp  EventKind = "level_up"
	EventGameOver EventKind = "game_over"
)

// Event is a level-up or game-over notification carrying a human readable
// message and the stats at the time it was raised
type Event struct {
	Kind     EventKind
	Message  string
	Reason   GameOverReason
	Score    int
	Level    int
	Currency int
	Bonus    int
	At       time.Time
}

// Outcome describes the effect of a single ProcessAction call
type Outcome struct {
	Applied bool
	Correct bool
	Points  int
	Removed bool
}

// PlayerSnapshot is a consistent read-only view of the player
type PlayerSnapshot struct {
	Score           int
	Currency        int
	Level           int
	Streak          int
	ComboMultiplier float64
	NextLevelScore  int
	Upgrades        map[Track]int
	Modifiers       Modifiers
}

// Modifiers are the gameplay values derived from upgrade levels
type Modifiers struct {
	InboxBonus               int
	ResponseTimeMultiplier   float64
	ResponseTime             time.Duration
	SpamCatchChance          float64
	QuickReplyTemplates      int
	SearchSpeedMultiplier    float64
	AttachmentSpaceReduction float64
}

// InboxSnapshot is a consistent read-only view of the inbox
type InboxSnapshot struct {
	Emails   []Email
	Used     int
	Capacity int
}

// TrackSnapshot describes the purchase state of one upgrade track
type TrackSnapshot struct {
	Track       Track
	Name        string
	Description string
	Effect      string
	Level       int
	NextCost    int
	Maxed       bool
	Purchasable bool
}

// SessionSnapshot bundles everything a frontend renders in one read
type SessionSnapshot struct {
	State           State
	Player          PlayerSnapshot
	Inbox           InboxSnapshot
	Tracks          []TrackSnapshot
	WrongDeletes    int
	MissedUrgent    int
	Interval        time.Duration
	Ticks           int64
	GameOverReason  GameOverReason
	GameOverMessage string
}
