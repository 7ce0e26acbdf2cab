package core

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MaxUpgradeLevel caps every upgrade track
const MaxUpgradeLevel = 10

// Track identifies an upgrade type
type Track string

const (
	TrackInboxCapacity         Track = "inbox_capacity"
	TrackResponseSpeed         Track = "response_speed"
	TrackSpamFilter            Track = "spam_filter"
	TrackQuickReply            Track = "quick_reply"
	TrackSearchSpeed           Track = "search_speed"
	TrackAttachmentCompression Track = "attachment_compression"
)

// TrackInfo is the static definition of an upgrade track
type TrackInfo struct {
	Track       Track
	Name        string
	Description string
	PerLevel    string
	BaseCost    int
	effect      func(level int) string
}

// Effect describes the cumulative effect of the track at level
func (t TrackInfo) Effect(level int) string {
	return t.effect(level)
}

var trackOrder = []Track{
	TrackInboxCapacity,
	TrackResponseSpeed,
	TrackSpamFilter,
	TrackQuickReply,
	TrackSearchSpeed,
	TrackAttachmentCompression,
}

var trackTable = map[Track]TrackInfo{
	TrackInboxCapacity: {
		Track:       TrackInboxCapacity,
		Name:        "Inbox Capacity",
		Description: "Increase maximum storage",
		PerLevel:    "+10 emails per level",
		BaseCost:    100,
		effect:      func(l int) string { return fmt.Sprintf("+%d capacity", 10*l) },
	},
	TrackResponseSpeed: {
		Track:       TrackResponseSpeed,
		Name:        "Response Speed",
		Description: "Decrease time to process emails",
		PerLevel:    "-5% per level",
		BaseCost:    150,
		effect:      func(l int) string { return fmt.Sprintf("-%d%% time", 5*l) },
	},
	TrackSpamFilter: {
		Track:       TrackSpamFilter,
		Name:        "Spam Filter",
		Description: "Auto-delete obvious spam",
		PerLevel:    "5% chance per level",
		BaseCost:    200,
		effect:      func(l int) string { return fmt.Sprintf("%d%% auto-delete", 5*l) },
	},
	TrackQuickReply: {
		Track:       TrackQuickReply,
		Name:        "Quick Reply",
		Description: "Prepare template responses",
		PerLevel:    "+1 template per level",
		BaseCost:    125,
		effect:      func(l int) string { return fmt.Sprintf("%d templates", l) },
	},
	TrackSearchSpeed: {
		Track:       TrackSearchSpeed,
		Name:        "Search Function",
		Description: "Find specific emails faster",
		PerLevel:    "+10% search speed",
		BaseCost:    175,
		effect:      func(l int) string { return fmt.Sprintf("+%d%% speed", 10*l) },
	},
	TrackAttachmentCompression: {
		Track:       TrackAttachmentCompression,
		Name:        "Attachment Compressor",
		Description: "Reduce space used by attachments",
		PerLevel:    "-5% space per level",
		BaseCost:    150,
		effect:      func(l int) string { return fmt.Sprintf("-%d%% space", 5*l) },
	},
}

// Tracks returns every upgrade track in catalog order
func Tracks() []Track {
	out := make([]Track, len(trackOrder))
	copy(out, trackOrder)
	return out
}

// LookupTrack returns the static definition of a track
func LookupTrack(track Track) (TrackInfo, bool) {
	info, ok := trackTable[track]
	return info, ok
}

// ParseTrack resolves a track from its id or display name
func ParseTrack(s string) (Track, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, t := range trackOrder {
		if string(t) == key || strings.EqualFold(trackTable[t].Name, key) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTrack, s)
}

// UpgradeCatalog prices upgrades and performs purchases against a player
type UpgradeCatalog struct {
	logger *zap.Logger
}

// NewUpgradeCatalog creates a catalog over the fixed track table
func NewUpgradeCatalog(logger *zap.Logger) *UpgradeCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpgradeCatalog{logger: logger}
}

// CostAt returns the price of the next level when the track is at currentLevel.
// Each level adds half the base cost.
func (c *UpgradeCatalog) CostAt(track Track, currentLevel int) int {
	info, ok := trackTable[track]
	if !ok {
		return 0
	}
	return info.BaseCost * (2 + currentLevel) / 2
}

// CanPurchase reports whether the player can afford the next level of track
func (c *UpgradeCatalog) CanPurchase(player *PlayerState, track Track) bool {
	if _, ok := trackTable[track]; !ok {
		return false
	}
	level := player.UpgradeLevel(track)
	if level >= MaxUpgradeLevel {
		return false
	}
	return player.Currency() >= c.CostAt(track, level)
}

// Purchase buys the next level of track. The currency deduction is the
// authoritative check, so a balance that changed after CanPurchase still
// leaves the player untouched.
func (c *UpgradeCatalog) Purchase(player *PlayerState, track Track) bool {
	if !c.CanPurchase(player, track) {
		c.logger.Debug("Upgrade not purchasable",
			zap.String("track", string(track)),
			zap.Int("currency", player.Currency()))
		return false
	}

	level, ok := player.buyUpgrade(track, func(current int) int {
		return c.CostAt(track, current)
	})
	if !ok {
		c.logger.Debug("Upgrade purchase lost race", zap.String("track", string(track)))
		return false
	}

	c.logger.Info("Upgrade purchased",
		zap.String("track", string(track)),
		zap.Int("level", level),
		zap.Int("currency", player.Currency()))
	return true
}

// Describe returns the purchase state of every track for the player
func (c *UpgradeCatalog) Describe(player *PlayerState) []TrackSnapshot {
	out := make([]TrackSnapshot, 0, len(trackOrder))
	for _, t := range trackOrder {
		info := trackTable[t]
		level := player.UpgradeLevel(t)
		out = append(out, TrackSnapshot{
			Track:       t,
			Name:        info.Name,
			Description: info.Description,
			Effect:      info.Effect(level),
			Level:       level,
			NextCost:    c.CostAt(t, level),
			Maxed:       level >= MaxUpgradeLevel,
			Purchasable: c.CanPurchase(player, t),
		})
	}
	return out
}
