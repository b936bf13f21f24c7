package vip

import (
	"strings"

	"go.uber.org/zap"
)

// Checker matches sender addresses against a set of important-sender
// substrings. Matching is case-insensitive and substring-based on the full
// address, so "ceo" matches both "ceo@corp.com" and "the.ceo.office@corp.com".
type Checker struct {
	substrings []string
	logger     *zap.Logger
}

// NewChecker creates a checker over the built-in substrings plus any
// operator-configured extras.
func NewChecker(builtin []string, extra []string, logger *zap.Logger) *Checker {
	substrings := make([]string, 0, len(builtin)+len(extra))
	for _, s := range builtin {
		substrings = append(substrings, strings.ToLower(strings.TrimSpace(s)))
	}
	for _, s := range extra {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			substrings = append(substrings, s)
		}
	}

	if len(extra) > 0 && logger != nil {
		logger.Info("Loaded extra VIP sender indicators", zap.Strings("indicators", extra))
	}

	return &Checker{
		substrings: substrings,
		logger:     logger,
	}
}

// Match reports whether the sender address contains any VIP substring.
func (c *Checker) Match(from string) bool {
	from = strings.ToLower(from)
	for _, s := range c.substrings {
		if strings.Contains(from, s) {
			if c.logger != nil {
				c.logger.Debug("VIP sender matched",
					zap.String("sender", from),
					zap.String("indicator", s))
			}
			return true
		}
	}
	return false
}
