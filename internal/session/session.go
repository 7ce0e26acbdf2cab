package session

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-defender/internal/adapters/autoplay"
	"github.com/mikey/email-defender/internal/adapters/scheduler"
	"github.com/mikey/email-defender/internal/core"
	"github.com/mikey/email-defender/internal/ports"
)

// Params are the collaborators of one session, injected by the container
type Params struct {
	dig.In

	Logger    *zap.Logger
	Game      *core.GameLoop
	Scheduler *scheduler.TickerScheduler
	Frontend  ports.Frontend
	Bot       *autoplay.Bot `optional:"true"`
}

// Run starts the frontend, the game and the autoplayer, then blocks until
// the game is over or stop is closed. A stopped session is ended with Quit.
// It returns the final snapshot.
func Run(p Params, stop <-chan struct{}) (core.SessionSnapshot, error) {
	if err := p.Frontend.Start(); err != nil {
		return core.SessionSnapshot{}, fmt.Errorf("failed to start frontend: %w", err)
	}

	if err := p.Game.Start(); err != nil {
		_ = p.Frontend.Stop()
		return core.SessionSnapshot{}, fmt.Errorf("failed to start game: %w", err)
	}

	if p.Bot != nil {
		if err := p.Bot.Start(); err != nil {
			p.Game.Quit()
			_ = p.Frontend.Stop()
			return core.SessionSnapshot{}, fmt.Errorf("failed to start autoplayer: %w", err)
		}
	}

	select {
	case <-p.Game.Done():
	case <-stop:
		p.Logger.Info("Stopping session")
	}

	if p.Bot != nil {
		if err := p.Bot.Stop(); err != nil {
			p.Logger.Error("Failed to stop autoplayer", zap.Error(err))
		}
	}

	// Quit is a no-op when the game already ended on its own
	p.Game.Quit()
	p.Scheduler.Wait()

	if err := p.Frontend.Stop(); err != nil {
		p.Logger.Error("Failed to stop frontend", zap.Error(err))
	}

	snap := p.Game.Snapshot()
	p.Logger.Info("Session finished",
		zap.String("reason", string(snap.GameOverReason)),
		zap.Int("score", snap.Player.Score),
		zap.Int("level", snap.Player.Level),
		zap.Int("currency", snap.Player.Currency),
		zap.Int64("ticks", snap.Ticks))

	return snap, nil
}
