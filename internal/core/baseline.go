package core

import (
	"strings"

	"github.com/mikey/email-triage/internal/vip"
)

// BaselineVIPIndicators are the built-in sender substrings the baseline
// strategy treats as VIP.
var BaselineVIPIndicators = []string{"ceo", "board", "investor"}

// Indicator sets for the short-circuit rules, evaluated in priority order.
// Matching is deliberately case-insensitive substring matching with no word
// boundaries; a longer word containing an indicator still matches.
var (
	spamIndicators = []string{
		"unsubscribe", "newsletter", "marketing", "promotional",
		"noreply", "no-reply", "donotreply",
	}
	urgencyIndicators = []string{
		"urgent", "asap", "emergency", "critical", "immediate",
	}
)

// BaselineHeuristic is the deterministic short-circuit strategy used for
// authoritative server-side triage. It either reaches a high-confidence
// decision from a single rule or declares the message uncertain so the
// caller can escalate to an external classifier.
type BaselineHeuristic struct {
	vips *vip.Checker
}

// NewBaselineHeuristic creates the baseline strategy. vips must cover at
// least BaselineVIPIndicators.
func NewBaselineHeuristic(vips *vip.Checker) *BaselineHeuristic {
	return &BaselineHeuristic{vips: vips}
}

// Score applies the short-circuit rules to a message.
func (h *BaselineHeuristic) Score(msg *Message) *HeuristicResult {
	from := strings.ToLower(msg.From)
	subject := strings.ToLower(msg.Subject)
	body := strings.ToLower(msg.Body)

	// Clear spam/newsletters: immediate LOW
	if containsAny(from, spamIndicators) || containsAny(subject, spamIndicators) {
		return &HeuristicResult{
			Tier:       TierLow,
			Confidence: 95,
			Reasoning:  "Newsletter/automated content",
		}
	}

	// Clear urgency: immediate HIGH
	if containsAny(subject, urgencyIndicators) || containsAny(body, urgencyIndicators) {
		return &HeuristicResult{
			Tier:       TierHigh,
			Confidence: 90,
			Reasoning:  "Contains urgency keywords",
		}
	}

	// VIP senders: likely HIGH
	if h.vips.Match(from) {
		return &HeuristicResult{
			Tier:       TierHigh,
			Confidence: 85,
			Reasoning:  "VIP sender",
		}
	}

	// No rule matched, needs external analysis
	return &HeuristicResult{Uncertain: true}
}

func containsAny(s string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}
