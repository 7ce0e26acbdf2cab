package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-defender/internal/adapters/autoplay"
	"github.com/mikey/email-defender/internal/adapters/notify"
	"github.com/mikey/email-defender/internal/adapters/scheduler"
	"github.com/mikey/email-defender/internal/config"
	"github.com/mikey/email-defender/internal/core"
	"github.com/mikey/email-defender/internal/factory"
	"github.com/mikey/email-defender/internal/logging"
	"github.com/mikey/email-defender/internal/ports"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideSession(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideSession registers everything below config and logger: factories,
// the game loop, its scheduler and notifier, the frontend and the autoplayer
func provideSession(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewGameFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewAutoplayFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register random source
	if err := container.Provide(func(f *factory.GameFactory) (*core.Random, error) {
		return f.CreateRandom()
	}); err != nil {
		return err
	}

	// Register scheduler
	if err := container.Provide(scheduler.NewTickerScheduler); err != nil {
		return err
	}

	// Register notifier
	if err := container.Provide(func(logger *zap.Logger) *notify.ChannelNotifier {
		return notify.NewChannelNotifier(notify.DefaultBufferSize, logger)
	}); err != nil {
		return err
	}

	// Register game loop
	if err := container.Provide(func(
		f *factory.GameFactory,
		rng *core.Random,
		sched *scheduler.TickerScheduler,
		notifier *notify.ChannelNotifier,
	) (*core.GameLoop, error) {
		return f.CreateGame(rng, sched, notifier)
	}); err != nil {
		return err
	}

	// Register frontend
	if err := container.Provide(func(
		f *factory.FrontendFactory,
		game *core.GameLoop,
		notifier *notify.ChannelNotifier,
	) (ports.Frontend, error) {
		return f.CreateFrontend(game, notifier.Events())
	}); err != nil {
		return err
	}

	// Register autoplayer
	if err := container.Provide(func(
		f *factory.AutoplayFactory,
		game *core.GameLoop,
		rng *core.Random,
	) (*autoplay.Bot, error) {
		return f.CreateAutoplayer(game, rng)
	}); err != nil {
		return err
	}

	return nil
}
