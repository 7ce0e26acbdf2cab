package factory

import (
	"fmt"

	"github.com/mikey/email-defender/internal/adapters/autoplay"
	"github.com/mikey/email-defender/internal/config"
	"github.com/mikey/email-defender/internal/core"
	"github.com/mikey/email-defender/internal/ports"
	"github.com/mikey/email-defender/internal/whitelist"
	"go.uber.org/zap"
)

// AutoplayFactory creates the autoplayer based on configuration
type AutoplayFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAutoplayFactory creates a new autoplay factory
func NewAutoplayFactory(cfg *config.Config, logger *zap.Logger) *AutoplayFactory {
	return &AutoplayFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAutoplayer creates the bot, or returns nil when autoplay is disabled
func (f *AutoplayFactory) CreateAutoplayer(game ports.GameController, rng *core.Random) (*autoplay.Bot, error) {
	autoCfg := f.cfg.GetAutoplay()
	if !autoCfg.Enabled {
		f.logger.Info("Autoplay disabled")
		return nil, nil
	}

	gameCfg, err := f.cfg.GetGame()
	if err != nil {
		return nil, err
	}

	preferred := make([]core.Track, 0, len(autoCfg.PreferredUpgrades))
	for _, name := range autoCfg.PreferredUpgrades {
		track, err := core.ParseTrack(name)
		if err != nil {
			return nil, fmt.Errorf("invalid autoplay.preferred_upgrades: %w", err)
		}
		preferred = append(preferred, track)
	}

	checker := whitelist.NewChecker(autoCfg.TrustedSenders, f.logger)
	return autoplay.NewBot(game, checker, rng, autoplay.Options{
		Accuracy:    autoCfg.Accuracy,
		BuyUpgrades: autoCfg.BuyUpgrades,
		Preferred:   preferred,
		TickUnit:    gameCfg.TickUnit,
	}, f.logger), nil
}
