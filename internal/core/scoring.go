package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mikey/email-triage/internal/vip"
)

// AdditiveVIPIndicators are the built-in sender substrings the additive
// strategy boosts.
var AdditiveVIPIndicators = []string{
	"board", "ceo", "cto", "cfo", "vp", "director", "partner",
	"client", "customer", "investor",
}

// Keyword weight tables. The three families are disjoint; a message matching
// keywords from conflicting families gets all contributions, there is no
// mutual exclusion. Matching is case-insensitive substring matching.
var (
	urgencyKeywords = map[string]int{
		"urgent": 25, "asap": 25, "immediate": 25, "emergency": 30,
		"deadline": 20, "eod": 20, "end of day": 20, "today": 15,
		"action required": 20, "please respond": 15, "time sensitive": 20,
		"important": 10, "critical": 25, "priority": 15,
	}
	businessKeywords = map[string]int{
		"board": 30, "ceo": 25, "cto": 25, "executive": 20,
		"meeting": 15, "proposal": 15, "contract": 25, "budget": 20,
		"revenue": 20, "client": 15, "customer": 15, "deal": 20,
		"partnership": 15, "investor": 25, "funding": 25,
	}
	lowPriorityKeywords = map[string]int{
		"newsletter": -20, "unsubscribe": -25, "notification": -15,
		"noreply": -20, "automated": -15, "marketing": -15,
		"promotional": -20, "spam": -30, "advertisement": -25,
		"sale": -10, "offer": -10, "deal of the day": -20,
		"team building": -5, "social event": -5,
	}
)

var personalDomains = []string{"@gmail.com", "@hotmail.com", "@yahoo.com"}

var automatedSenders = []string{"noreply", "no-reply", "donotreply"}

// AdditiveHeuristic is the weighted scoring strategy used for standalone
// best-effort ranking. Unlike the baseline strategy it always yields a tier
// and never requests escalation; its confidence is derived from the distance
// between the final score and the neutral baseline.
type AdditiveHeuristic struct {
	vips *vip.Checker
	now  func() time.Time
}

// NewAdditiveHeuristic creates the additive strategy. vips must cover at
// least AdditiveVIPIndicators.
func NewAdditiveHeuristic(vips *vip.Checker) *AdditiveHeuristic {
	return &AdditiveHeuristic{
		vips: vips,
		now:  time.Now,
	}
}

// Score computes the weighted score for a message and maps it to a tier.
func (h *AdditiveHeuristic) Score(msg *Message) *HeuristicResult {
	subject := strings.ToLower(msg.Subject)
	body := strings.ToLower(msg.Body)
	from := strings.ToLower(msg.From)

	score := 50.0
	signals := make([]Signal, 0, 6)

	record := func(name string, contribution float64) {
		if contribution != 0 {
			signals = append(signals, Signal{Name: name, Weight: int(math.Round(contribution))})
		}
		score += contribution
	}

	record("urgency keywords", scoreKeywords(urgencyKeywords, subject, body))
	record("business keywords", scoreKeywords(businessKeywords, subject, body))
	record("low-priority keywords", scoreKeywords(lowPriorityKeywords, subject, body))
	record("sender", float64(h.scoreSender(from)))
	record("timing", float64(h.scoreTime(msg.Timestamp)))
	record("subject shape", float64(scoreSubject(msg.Subject)))

	tier := TierMedium
	switch {
	case score >= 75:
		tier = TierHigh
	case score <= 25:
		tier = TierLow
	}

	distance := math.Abs(score - 50)
	confidence := 50 + int(math.Min(45, math.Round(distance/2)))

	return &HeuristicResult{
		Tier:       tier,
		Confidence: confidence,
		Reasoning:  additiveReasoning(score, signals),
		Signals:    signals,
	}
}

// scoreKeywords sums one family's contributions. A match anywhere earns the
// base weight once; a match in the subject earns an extra 50% on top, applied
// once even when the keyword appears in both subject and body.
func scoreKeywords(table map[string]int, subject, body string) float64 {
	var total float64
	for keyword, weight := range table {
		inSubject := strings.Contains(subject, keyword)
		if inSubject || strings.Contains(body, keyword) {
			total += float64(weight)
			if inSubject {
				total += float64(weight) * 0.5
			}
		}
	}
	return total
}

// scoreSender classifies the sender address; first match wins.
func (h *AdditiveHeuristic) scoreSender(from string) int {
	for _, domain := range personalDomains {
		if strings.Contains(from, domain) {
			return -5
		}
	}
	for _, indicator := range automatedSenders {
		if strings.Contains(from, indicator) {
			return -15
		}
	}
	if h.vips.Match(from) {
		return 15
	}
	// Anything that is not a common personal mailbox is assumed corporate
	return 5
}

// scoreTime rewards recency; older mail falls back to weekend/after-hours
// adjustments. Recency and hour-of-day rules are mutually exclusive, recency
// is checked first.
func (h *AdditiveHeuristic) scoreTime(received time.Time) int {
	hoursSince := h.now().Sub(received).Hours()

	if hoursSince < 1 {
		return 10
	}
	if hoursSince < 4 {
		return 5
	}
	if hoursSince > 48 {
		return -10
	}

	day := received.Weekday()
	if day == time.Sunday || day == time.Saturday {
		return 5
	}
	if hour := received.Hour(); hour < 7 || hour > 19 {
		return 5
	}
	return 0
}

func scoreSubject(subject string) int {
	score := 0
	lower := strings.ToLower(subject)

	if strings.Contains(subject, "?") {
		score += 5
	}
	if subject == strings.ToUpper(subject) && len(subject) > 5 {
		score += 10
	}
	if exclamations := strings.Count(subject, "!"); exclamations > 0 {
		score += min(exclamations*3, 10)
	}
	if strings.HasPrefix(lower, "re:") || strings.HasPrefix(lower, "fwd:") {
		score += 5
	}
	if len(subject) < 20 {
		score += 3
	}
	if len(subject) > 100 {
		score -= 10
	}

	return score
}

func additiveReasoning(score float64, signals []Signal) string {
	parts := make([]string, 0, len(signals))
	for _, sig := range signals {
		parts = append(parts, fmt.Sprintf("%s %+d", sig.Name, sig.Weight))
	}
	reasoning := fmt.Sprintf("Score %d", int(math.Round(score)))
	if len(parts) > 0 {
		reasoning += ": " + strings.Join(parts, ", ")
	}
	if len(reasoning) > 200 {
		reasoning = reasoning[:197] + "..."
	}
	return reasoning
}
