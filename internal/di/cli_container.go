package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-defender/internal/config"
	"github.com/mikey/email-defender/internal/logging"
)

// CLIFlags contains all command line flags for the simulator
type CLIFlags struct {
	// Game flags
	Seed     int64
	TickUnit time.Duration

	// Autoplay flags
	Accuracy    float64
	BuyUpgrades bool

	// Run flags
	MaxDuration time.Duration
	Verbose     bool
	JSONLog     bool
	ConfigFile  string
}

// BuildCLIContainer creates and configures a dependency injection container for the simulator
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			applyFlags(cfg, flags)
			return cfg, nil
		}

		cfg := config.NewFromViper(config.NewEmptyViper())
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideSession(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overlays the simulator settings on cfg. The simulator always
// runs headless with the autoplayer.
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()

	v.Set("frontend.type", "headless")
	v.Set("autoplay.enabled", true)
	v.Set("autoplay.accuracy", flags.Accuracy)
	v.Set("autoplay.buy_upgrades", flags.BuyUpgrades)
	if flags.Seed != 0 {
		v.Set("game.seed", flags.Seed)
	}
	if flags.TickUnit > 0 {
		v.Set("game.tick_unit", flags.TickUnit.String())
	}
}
