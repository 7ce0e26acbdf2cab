package config

import (
	"fmt"
	"time"
)

// GameConfig represents the configuration of a game session
type GameConfig struct {
	Seed            int64
	TickUnit        time.Duration
	InitialCapacity int
}

// FrontendConfig represents the configuration of the frontend
type FrontendConfig struct {
	Type           string
	StatusInterval time.Duration
	Interactive    bool
}

// AutoplayConfig represents the configuration of the autoplayer bot
type AutoplayConfig struct {
	Enabled           bool
	Accuracy          float64
	BuyUpgrades       bool
	PreferredUpgrades []string
	TrustedSenders    []string
}

// GetGame returns the game configuration
func (c *Config) GetGame() (GameConfig, error) {
	tickUnit, err := c.GetDuration("game.tick_unit")
	if err != nil {
		return GameConfig{}, fmt.Errorf("invalid game.tick_unit: %w", err)
	}
	if tickUnit <= 0 {
		return GameConfig{}, fmt.Errorf("invalid game.tick_unit: %s must be positive", tickUnit)
	}

	return GameConfig{
		Seed:            c.v.GetInt64("game.seed"),
		TickUnit:        tickUnit,
		InitialCapacity: c.GetInt("game.initial_capacity"),
	}, nil
}

// GetFrontend returns the frontend configuration
func (c *Config) GetFrontend() (FrontendConfig, error) {
	interval, err := c.GetDuration("frontend.status_interval")
	if err != nil {
		return FrontendConfig{}, fmt.Errorf("invalid frontend.status_interval: %w", err)
	}

	return FrontendConfig{
		Type:           c.GetString("frontend.type"),
		StatusInterval: interval,
		Interactive:    c.GetBool("frontend.interactive"),
	}, nil
}

// GetAutoplay returns the autoplayer configuration
func (c *Config) GetAutoplay() AutoplayConfig {
	accuracy := c.GetFloat64("autoplay.accuracy")
	accuracy = min(max(accuracy, 0), 1)

	return AutoplayConfig{
		Enabled:           c.GetBool("autoplay.enabled"),
		Accuracy:          accuracy,
		BuyUpgrades:       c.GetBool("autoplay.buy_upgrades"),
		PreferredUpgrades: c.GetStringSlice("autoplay.preferred_upgrades"),
		TrustedSenders:    c.GetStringSlice("autoplay.trusted_senders"),
	}
}
