package autoplay

import (
	"fmt"
	"sync"
	"time"

	"github.com/mikey/email-defender/internal/core"
	"github.com/mikey/email-defender/internal/ports"
	"github.com/mikey/email-defender/internal/whitelist"
	"go.uber.org/zap"
)

// Options tunes the bot
type Options struct {
	// Accuracy is the probability of choosing the correct action
	Accuracy float64
	// BuyUpgrades makes the bot spend currency on upgrades
	BuyUpgrades bool
	// Preferred tracks are bought first, in order, when affordable
	Preferred []core.Track
	// TickUnit scales the player's response time like the game interval
	TickUnit time.Duration
}

// Bot plays a session through the public action API. It handles one email
// per response time, trusting senders on the whitelist and treating
// everything else as spam.
type Bot struct {
	game    ports.GameController
	checker *whitelist.Checker
	rng     *core.Random
	opts    Options
	logger  *zap.Logger

	mu       sync.Mutex
	started  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewBot creates a new autoplayer
func NewBot(game ports.GameController, checker *whitelist.Checker, rng *core.Random, opts Options, logger *zap.Logger) *Bot {
	if opts.TickUnit <= 0 {
		opts.TickUnit = time.Second
	}
	return &Bot{
		game:    game,
		checker: checker,
		rng:     rng,
		opts:    opts,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start starts playing in the background
func (b *Bot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("autoplayer already started")
	}
	b.started = true

	b.wg.Add(1)
	go b.run()

	b.logger.Info("Autoplayer started",
		zap.Float64("accuracy", b.opts.Accuracy),
		zap.Bool("buy_upgrades", b.opts.BuyUpgrades))
	return nil
}

// Stop stops playing and waits for the current move to finish
func (b *Bot) Stop() error {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.wg.Wait()
	})
	return nil
}

func (b *Bot) run() {
	defer b.wg.Done()

	for {
		snap := b.game.Snapshot()
		if snap.State == core.StateGameOver {
			b.logger.Debug("Autoplayer stopping, game is over")
			return
		}

		timer := time.NewTimer(b.scale(snap.Player.Modifiers.ResponseTime))
		select {
		case <-b.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		b.Step()
	}
}

// Step handles the most pressing email and then shops for an upgrade. It
// returns the outcome of the action, which is not applied when the game is
// not running or the inbox is empty.
func (b *Bot) Step() core.Outcome {
	snap := b.game.Snapshot()
	if snap.State != core.StateRunning {
		return core.Outcome{}
	}

	var outcome core.Outcome
	if email, ok := pickEmail(snap.Inbox.Emails); ok {
		action := b.decide(email)
		outcome = b.game.ProcessAction(email.ID, action)
		b.logger.Debug("Autoplayer acted",
			zap.String("id", email.ID),
			zap.String("sender", email.Sender),
			zap.String("action", string(action)),
			zap.Bool("correct", outcome.Correct),
			zap.Int("points", outcome.Points))
	}

	if b.opts.BuyUpgrades {
		b.shop()
	}
	return outcome
}

// decide picks the action for email, choosing the wrong one with
// probability 1-Accuracy
func (b *Bot) decide(email core.Email) core.ActionKind {
	trusted := b.checker.IsWhitelisted(email.Sender)
	mistake := b.rng.Float64() >= b.opts.Accuracy

	switch {
	case trusted && !mistake:
		return core.ActionRespond
	case trusted:
		return core.ActionDelete
	case !mistake:
		return core.ActionMarkSpam
	default:
		return core.ActionRespond
	}
}

// shop buys the first affordable preferred upgrade, falling back to the
// cheapest purchasable one
func (b *Bot) shop() {
	best, found := choose(b.game.Snapshot().Tracks, b.opts.Preferred)
	if !found {
		return
	}

	if b.game.PurchaseUpgrade(best.Track) {
		b.logger.Debug("Autoplayer bought upgrade",
			zap.String("track", string(best.Track)),
			zap.Int("cost", best.NextCost))
	}
}

func choose(tracks []core.TrackSnapshot, preferred []core.Track) (core.TrackSnapshot, bool) {
	for _, want := range preferred {
		for _, t := range tracks {
			if t.Track == want && t.Purchasable {
				return t, true
			}
		}
	}

	var (
		best  core.TrackSnapshot
		found bool
	)
	for _, t := range tracks {
		if !t.Purchasable {
			continue
		}
		if !found || t.NextCost < best.NextCost {
			best, found = t, true
		}
	}
	return best, found
}

// scale converts a duration measured in seconds of game time to real time
func (b *Bot) scale(d time.Duration) time.Duration {
	return time.Duration(float64(d) * float64(b.opts.TickUnit) / float64(time.Second))
}

// pickEmail returns the oldest urgent email, or the oldest email when none
// is urgent
func pickEmail(emails []core.Email) (core.Email, bool) {
	if len(emails) == 0 {
		return core.Email{}, false
	}
	for _, e := range emails {
		if e.Urgent {
			return e, true
		}
	}
	return emails[0], true
}
