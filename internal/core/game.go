package core

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultInitialCapacity is the inbox ceiling before the first level-up
	DefaultInitialCapacity = 3
	// baseCapacity is the ceiling rebuilt on level-up, before upgrades
	baseCapacity = 20

	maxWrongDeletes = 5
	maxMissedUrgent = 3

	respondPoints      = 10
	spamPoints         = 5
	autoCatchPoints    = 5
	wrongActionPenalty = 15
	levelBonusPerLevel = 50
)

// GameOptions tunes a session
type GameOptions struct {
	// InitialCapacity is the inbox ceiling at session start
	InitialCapacity int
	// TickUnit is the real duration of one interval step. Production uses a
	// second, simulations use less.
	TickUnit time.Duration
}

// GameLoop drives a session: it owns the generation schedule, applies the
// spam filter, enforces failure conditions and resolves player actions.
// Ticks, actions and purchases are serialised by a single mutex.
type GameLoop struct {
	mu sync.Mutex

	player    *PlayerState
	inbox     *Inbox
	catalog   *UpgradeCatalog
	generator *EmailGenerator
	rng       *Random
	scheduler Scheduler
	notifier  Notifier
	logger    *zap.Logger
	tickUnit  time.Duration

	state        State
	wrongDeletes int
	missedUrgent int
	interval     time.Duration
	cancelTicks  func()
	generation   uint64
	ticks        int64
	overReason   GameOverReason
	overMessage  string
	done         chan struct{}
}

// NewGameLoop creates a stopped session
func NewGameLoop(
	player *PlayerState,
	inbox *Inbox,
	catalog *UpgradeCatalog,
	generator *EmailGenerator,
	rng *Random,
	scheduler Scheduler,
	notifier Notifier,
	logger *zap.Logger,
	opts GameOptions,
) *GameLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(Event) {})
	}
	if opts.TickUnit <= 0 {
		opts.TickUnit = time.Second
	}
	if opts.InitialCapacity > 0 {
		inbox.SetCapacity(opts.InitialCapacity)
	}

	return &GameLoop{
		player:    player,
		inbox:     inbox,
		catalog:   catalog,
		generator: generator,
		rng:       rng,
		scheduler: scheduler,
		notifier:  notifier,
		logger:    logger,
		tickUnit:  opts.TickUnit,
		state:     StateStopped,
		done:      make(chan struct{}),
	}
}

// Start moves a stopped session to running and schedules generation,
// with the first tick due immediately
func (g *GameLoop) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateStopped:
	case StateGameOver:
		return ErrGameOver
	default:
		return ErrAlreadyStarted
	}

	g.state = StateRunning
	g.reschedule()
	g.logger.Info("Game started",
		zap.Int("capacity", g.inbox.Capacity()),
		zap.Duration("interval", g.interval))
	return nil
}

// Pause suspends generation and actions. Scheduled ticks keep firing but
// do nothing.
func (g *GameLoop) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateRunning {
		g.state = StatePaused
		g.logger.Info("Game paused")
	}
}

// Resume continues a paused session
func (g *GameLoop) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StatePaused {
		g.state = StateRunning
		g.logger.Info("Game resumed")
	}
}

// Quit ends a running or paused session
func (g *GameLoop) Quit() {
	g.mu.Lock()
	var events []Event
	if g.state == StateRunning || g.state == StatePaused {
		events = append(events, g.endLocked(ReasonQuit, "You left the game. Game Over."))
	}
	g.mu.Unlock()

	g.dispatch(events)
}

// Done is closed when the session reaches GameOver
func (g *GameLoop) Done() <-chan struct{} {
	return g.done
}

// State returns the lifecycle state
func (g *GameLoop) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ProcessAction applies a player action to the email with the given ID.
// Actions are ignored unless the session is running and the email is still
// in the inbox.
func (g *GameLoop) ProcessAction(emailID string, kind ActionKind) Outcome {
	g.mu.Lock()
	outcome, events := g.processLocked(emailID, kind)
	g.mu.Unlock()

	g.dispatch(events)
	return outcome
}

func (g *GameLoop) processLocked(emailID string, kind ActionKind) (Outcome, []Event) {
	if g.state != StateRunning {
		g.logger.Debug("Ignoring action on inactive game",
			zap.String("state", string(g.state)),
			zap.String("action", string(kind)))
		return Outcome{}, nil
	}

	email, ok := g.inbox.Get(emailID)
	if !ok {
		g.logger.Debug("Ignoring action on unknown email", zap.String("id", emailID))
		return Outcome{}, nil
	}

	var (
		outcome Outcome
		events  []Event
	)
	switch kind {
	case ActionRespond:
		if email.IsLegitimate() {
			outcome = Outcome{Applied: true, Correct: true, Points: g.player.AwardPoints(respondPoints)}
		} else {
			g.player.DeductPoints(wrongActionPenalty)
			outcome = Outcome{Applied: true, Points: -wrongActionPenalty}
		}
		outcome.Removed = g.inbox.Remove(email.ID)

	case ActionDelete, ActionMarkSpam:
		if email.IsSpam() {
			outcome = Outcome{Applied: true, Correct: true, Points: g.player.AwardPoints(spamPoints)}
			outcome.Removed = g.inbox.Remove(email.ID)
			break
		}
		g.player.DeductPoints(wrongActionPenalty)
		outcome = Outcome{Applied: true, Points: -wrongActionPenalty}
		outcome.Removed = g.inbox.Remove(email.ID)
		g.wrongDeletes++
		if g.wrongDeletes >= maxWrongDeletes {
			msg := "You've deleted too many legitimate emails! Game Over."
			if kind == ActionMarkSpam {
				msg = "You've marked too many legitimate emails as spam! Game Over."
			}
			events = append(events, g.endLocked(ReasonTooManyWrongMoves, msg))
		}

	case ActionIgnore:
		// ignoring is only meaningful for urgent emails, spam or not
		if !email.Urgent {
			return Outcome{}, nil
		}
		g.player.DeductPoints(wrongActionPenalty)
		outcome = Outcome{Applied: true, Points: -wrongActionPenalty}
		g.missedUrgent++
		if g.missedUrgent >= maxMissedUrgent {
			events = append(events, g.endLocked(ReasonTooManyMissed, "You've missed too many critical emails! Game Over."))
		}

	default:
		g.logger.Debug("Ignoring unknown action", zap.String("action", string(kind)))
		return Outcome{}, nil
	}

	g.logger.Debug("Action processed",
		zap.String("id", email.ID),
		zap.String("category", string(email.Category)),
		zap.String("action", string(kind)),
		zap.Bool("correct", outcome.Correct),
		zap.Int("points", outcome.Points))

	return outcome, events
}

// PurchaseUpgrade buys the next level of track. An inbox capacity purchase
// resizes the inbox immediately.
func (g *GameLoop) PurchaseUpgrade(track Track) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateGameOver {
		return false
	}
	if !g.catalog.Purchase(g.player, track) {
		return false
	}
	if track == TrackInboxCapacity {
		g.inbox.SetCapacity(g.capacityLocked())
		g.logger.Info("Inbox capacity upgraded", zap.Int("capacity", g.inbox.Capacity()))
	}
	return true
}

// Snapshot returns a consistent view of the whole session
func (g *GameLoop) Snapshot() SessionSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	return SessionSnapshot{
		State:           g.state,
		Player:          g.player.Snapshot(),
		Inbox:           g.inbox.Snapshot(),
		Tracks:          g.catalog.Describe(g.player),
		WrongDeletes:    g.wrongDeletes,
		MissedUrgent:    g.missedUrgent,
		Interval:        g.interval,
		Ticks:           g.ticks,
		GameOverReason:  g.overReason,
		GameOverMessage: g.overMessage,
	}
}

// tick runs one generation step for the schedule identified by gen
func (g *GameLoop) tick(gen uint64) {
	g.mu.Lock()
	events := g.tickLocked(gen)
	g.mu.Unlock()

	g.dispatch(events)
}

func (g *GameLoop) tickLocked(gen uint64) []Event {
	// stale schedules and paused sessions fire without effect
	if gen != g.generation || g.state != StateRunning {
		return nil
	}
	g.ticks++

	email := g.generator.Generate(g.player.Level())

	if email.IsSpam() && g.rng.Float64() < g.player.SpamCatchChance() {
		points := g.player.AwardPoints(autoCatchPoints)
		g.logger.Debug("Spam filter caught email",
			zap.String("id", email.ID),
			zap.String("category", string(email.Category)),
			zap.Int("points", points))
		return nil
	}

	if !g.inbox.Add(email) {
		return []Event{g.endLocked(ReasonInboxFull, "Your inbox is full! Game Over.")}
	}

	if g.player.CheckLevelUp() {
		return []Event{g.levelUpLocked()}
	}
	return nil
}

func (g *GameLoop) levelUpLocked() Event {
	level := g.player.LevelUp()
	bonus := level * levelBonusPerLevel
	g.player.AwardCurrency(bonus)

	g.reschedule()
	g.inbox.SetCapacity(g.capacityLocked())

	g.logger.Info("Level up",
		zap.Int("level", level),
		zap.Int("bonus", bonus),
		zap.Int("capacity", g.inbox.Capacity()),
		zap.Duration("interval", g.interval))

	snap := g.player.Snapshot()
	return Event{
		Kind: EventLevelUp,
		Message: fmt.Sprintf("Congratulations! You've reached Level %d! You've been awarded %d bonus coins.",
			level, bonus),
		Score:    snap.Score,
		Level:    snap.Level,
		Currency: snap.Currency,
		Bonus:    bonus,
		At:       time.Now(),
	}
}

// endLocked moves the session to GameOver and stops all future ticks
func (g *GameLoop) endLocked(reason GameOverReason, message string) Event {
	g.state = StateGameOver
	g.overReason = reason
	g.overMessage = message
	g.stopTicksLocked()
	close(g.done)

	snap := g.player.Snapshot()
	g.logger.Info("Game over",
		zap.String("reason", string(reason)),
		zap.Int("score", snap.Score),
		zap.Int("level", snap.Level),
		zap.Int64("ticks", g.ticks))

	return Event{
		Kind:     EventGameOver,
		Message:  message,
		Reason:   reason,
		Score:    snap.Score,
		Level:    snap.Level,
		Currency: snap.Currency,
		At:       time.Now(),
	}
}

// reschedule cancels the current schedule and starts a new one with an
// interval derived from the current level
func (g *GameLoop) reschedule() {
	g.stopTicksLocked()
	g.interval = g.intervalLocked()
	gen := g.generation
	g.cancelTicks = g.scheduler.Every(g.interval, func() { g.tick(gen) })
}

func (g *GameLoop) stopTicksLocked() {
	if g.cancelTicks != nil {
		g.cancelTicks()
		g.cancelTicks = nil
	}
	g.generation++
}

// intervalLocked is max(10-level, 2) steps, jittered by one step either
// way, never below one step
func (g *GameLoop) intervalLocked() time.Duration {
	base := max(10-g.player.Level(), 2)
	steps := max(1, base+g.rng.Intn(3)-1)
	return time.Duration(steps) * g.tickUnit
}

func (g *GameLoop) capacityLocked() int {
	return baseCapacity + g.player.InboxBonus()
}

func (g *GameLoop) dispatch(events []Event) {
	for _, e := range events {
		g.notifier.Notify(e)
	}
}
