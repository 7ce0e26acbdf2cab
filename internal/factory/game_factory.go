package factory

import (
	"fmt"

	"github.com/mikey/email-defender/internal/config"
	"github.com/mikey/email-defender/internal/core"
	"go.uber.org/zap"
)

// GameFactory creates game sessions based on configuration
type GameFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGameFactory creates a new game factory
func NewGameFactory(cfg *config.Config, logger *zap.Logger) *GameFactory {
	return &GameFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRandom creates the shared random source. A zero seed is replaced
// with one from crypto/rand.
func (f *GameFactory) CreateRandom() (*core.Random, error) {
	gameCfg, err := f.cfg.GetGame()
	if err != nil {
		return nil, err
	}

	seed := gameCfg.Seed
	if seed == 0 {
		seed, err = core.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("failed to seed random source: %w", err)
		}
	}

	f.logger.Info("Random source seeded", zap.Int64("seed", seed))
	return core.NewRandom(seed), nil
}

// CreateGame creates a stopped game session
func (f *GameFactory) CreateGame(rng *core.Random, scheduler core.Scheduler, notifier core.Notifier) (*core.GameLoop, error) {
	gameCfg, err := f.cfg.GetGame()
	if err != nil {
		return nil, err
	}
	if gameCfg.InitialCapacity <= 0 {
		return nil, fmt.Errorf("invalid game.initial_capacity: %d", gameCfg.InitialCapacity)
	}

	return core.NewGameLoop(
		core.NewPlayerState(),
		core.NewInbox(gameCfg.InitialCapacity),
		core.NewUpgradeCatalog(f.logger),
		core.NewEmailGenerator(rng, f.logger),
		rng,
		scheduler,
		notifier,
		f.logger,
		core.GameOptions{
			InitialCapacity: gameCfg.InitialCapacity,
			TickUnit:        gameCfg.TickUnit,
		},
	), nil
}
