package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker provides functionality to check if email senders are trusted
type Checker struct {
	senders map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(senders []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	normalized := make(map[string]struct{}, len(senders))
	names := make([]string, 0, len(senders))
	for _, sender := range senders {
		key := normalize(sender)
		if key == "" {
			continue
		}
		if _, ok := normalized[key]; !ok {
			names = append(names, key)
		}
		normalized[key] = struct{}{}
	}

	if len(names) > 0 {
		logger.Info("Initialized whitelist checker", zap.Strings("senders", names))
	}

	return &Checker{
		senders: normalized,
		logger:  logger,
	}
}

// IsWhitelisted checks if the sender is in the whitelist. Matching ignores
// case and surrounding whitespace.
func (c *Checker) IsWhitelisted(sender string) bool {
	if len(c.senders) == 0 {
		return false
	}

	if _, ok := c.senders[normalize(sender)]; ok {
		c.logger.Debug("Sender is whitelisted", zap.String("sender", sender))
		return true
	}
	return false
}

// Len returns the number of distinct trusted senders
func (c *Checker) Len() int {
	return len(c.senders)
}

func normalize(sender string) string {
	return strings.ToLower(strings.TrimSpace(sender))
}
