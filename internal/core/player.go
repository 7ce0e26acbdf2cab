package core

import (
	"sync"
	"time"
)

const (
	// maxComboStreak caps the streak that contributes to the combo multiplier
	maxComboStreak = 10
	// pointsPerLevel is multiplied by the current level to get the level-up threshold
	pointsPerLevel = 500
	// baseResponseTime is the response time before the response speed upgrade
	baseResponseTime = 3000 * time.Millisecond
)

// PlayerState holds score, currency, level, combo streak and upgrade levels.
// All mutation goes through its methods, each of which is atomic.
type PlayerState struct {
	mu       sync.RWMutex
	score    int
	currency int
	level    int
	streak   int
	upgrades map[Track]int
}

// NewPlayerState creates a level 1 player with nothing earned
func NewPlayerState() *PlayerState {
	upgrades := make(map[Track]int, len(trackOrder))
	for _, t := range trackOrder {
		upgrades[t] = 0
	}
	return &PlayerState{
		level:    1,
		upgrades: upgrades,
	}
}

// comboTenths is the combo multiplier expressed in tenths
func comboTenths(streak int) int {
	return 10 + min(streak, maxComboStreak)
}

// AwardPoints adds base scaled by the combo multiplier, extends the streak
// and pays one currency per ten points awarded plus a bonus coin when the
// award is a round multiple of ten. It returns the points awarded.
func (p *PlayerState) AwardPoints(base int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	awarded := base * comboTenths(p.streak) / 10
	p.score += awarded
	p.streak++

	p.currency += awarded / 10
	if awarded > 0 && awarded%10 == 0 {
		p.currency++
	}
	return awarded
}

// DeductPoints lowers the score, never below zero, and breaks the streak
func (p *PlayerState) DeductPoints(amount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.score = max(0, p.score-amount)
	p.streak = 0
}

// AwardCurrency adds amount to the balance
func (p *PlayerState) AwardCurrency(amount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currency += amount
}

// DeductCurrency removes amount from the balance. It returns false and
// leaves the balance unchanged when funds are insufficient.
func (p *PlayerState) DeductCurrency(amount int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currency < amount {
		return false
	}
	p.currency -= amount
	return true
}

// CheckLevelUp reports whether the score reached the threshold for the
// current level. It does not consume anything.
func (p *PlayerState) CheckLevelUp() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.score >= pointsPerLevel*p.level
}

// LevelUp advances the level and returns the new one. Score is kept.
func (p *PlayerState) LevelUp() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level++
	return p.level
}

// buyUpgrade deducts cost(currentLevel) and raises the track in one critical
// section. It returns the new track level.
func (p *PlayerState) buyUpgrade(track Track, cost func(currentLevel int) int) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.upgrades[track]
	if current >= MaxUpgradeLevel {
		return current, false
	}
	price := cost(current)
	if p.currency < price {
		return current, false
	}
	p.currency -= price
	p.upgrades[track] = current + 1
	return current + 1, true
}

// Score returns the current score
func (p *PlayerState) Score() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.score
}

// Currency returns the current balance
func (p *PlayerState) Currency() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currency
}

// Level returns the current level
func (p *PlayerState) Level() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// Streak returns the number of consecutive correct actions
func (p *PlayerState) Streak() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.streak
}

// ComboMultiplier returns 1.0 + 0.1 per streak step, capped at 2.0
func (p *PlayerState) ComboMultiplier() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return float64(comboTenths(p.streak)) / 10
}

// UpgradeLevel returns the level of track, 0 when never purchased
func (p *PlayerState) UpgradeLevel(track Track) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.upgrades[track]
}

// InboxBonus is the extra capacity granted by the inbox capacity track
func (p *PlayerState) InboxBonus() int {
	return inboxBonus(p.UpgradeLevel(TrackInboxCapacity))
}

// ResponseTimeMultiplier scales the time needed to handle an email
func (p *PlayerState) ResponseTimeMultiplier() float64 {
	return responseTimeMultiplier(p.UpgradeLevel(TrackResponseSpeed))
}

// ResponseTime is the base response time scaled by the response speed track
func (p *PlayerState) ResponseTime() time.Duration {
	return responseTime(p.UpgradeLevel(TrackResponseSpeed))
}

// SpamCatchChance is the probability that incoming spam is filtered automatically
func (p *PlayerState) SpamCatchChance() float64 {
	return spamCatchChance(p.UpgradeLevel(TrackSpamFilter))
}

// QuickReplyTemplates is the number of prepared reply templates
func (p *PlayerState) QuickReplyTemplates() int {
	return p.UpgradeLevel(TrackQuickReply)
}

// SearchSpeedMultiplier scales search speed
func (p *PlayerState) SearchSpeedMultiplier() float64 {
	return searchSpeedMultiplier(p.UpgradeLevel(TrackSearchSpeed))
}

// AttachmentSpaceReduction is the fraction of attachment space saved
func (p *PlayerState) AttachmentSpaceReduction() float64 {
	return attachmentSpaceReduction(p.UpgradeLevel(TrackAttachmentCompression))
}

// Snapshot returns a consistent copy of the player
func (p *PlayerState) Snapshot() PlayerSnapshot {
	p.mu.RLock()
	upgrades := make(map[Track]int, len(p.upgrades))
	for t, l := range p.upgrades {
		upgrades[t] = l
	}
	snap := PlayerSnapshot{
		Score:           p.score,
		Currency:        p.currency,
		Level:           p.level,
		Streak:          p.streak,
		ComboMultiplier: float64(comboTenths(p.streak)) / 10,
		NextLevelScore:  pointsPerLevel * p.level,
		Upgrades:        upgrades,
	}
	p.mu.RUnlock()

	snap.Modifiers = Modifiers{
		InboxBonus:               inboxBonus(upgrades[TrackInboxCapacity]),
		ResponseTimeMultiplier:   responseTimeMultiplier(upgrades[TrackResponseSpeed]),
		ResponseTime:             responseTime(upgrades[TrackResponseSpeed]),
		SpamCatchChance:          spamCatchChance(upgrades[TrackSpamFilter]),
		QuickReplyTemplates:      upgrades[TrackQuickReply],
		SearchSpeedMultiplier:    searchSpeedMultiplier(upgrades[TrackSearchSpeed]),
		AttachmentSpaceReduction: attachmentSpaceReduction(upgrades[TrackAttachmentCompression]),
	}
	return snap
}

func inboxBonus(level int) int {
	return 10 * level
}

func responseTimeMultiplier(level int) float64 {
	return 1.0 - 0.05*float64(level)
}

func responseTime(level int) time.Duration {
	return baseResponseTime * time.Duration(100-5*level) / 100
}

func spamCatchChance(level int) float64 {
	return 0.05 * float64(level)
}

func searchSpeedMultiplier(level int) float64 {
	return 1.0 + 0.10*float64(level)
}

func attachmentSpaceReduction(level int) float64 {
	return 0.05 * float64(level)
}
