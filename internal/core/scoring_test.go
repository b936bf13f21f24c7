package core

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mikey/email-triage/internal/vip"
	"go.uber.org/zap"
)

func newAdditiveForTest(now time.Time) *AdditiveHeuristic {
	h := NewAdditiveHeuristic(vip.NewChecker(AdditiveVIPIndicators, nil, zap.NewNop()))
	h.now = func() time.Time { return now }
	return h
}

func TestAdditiveHeuristicUrgentBusinessMail(t *testing.T) {
	now := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	h := newAdditiveForTest(now)

	msg := &Message{
		ID:        "test",
		From:      "legal@partner.com",
		Subject:   "URGENT: Contract Review Needed by EOD",
		Body:      "Please review the contract before end of day.",
		Timestamp: now.Add(-30 * time.Minute),
	}
	got := h.Score(msg)

	if got.Uncertain {
		t.Fatal("additive strategy must never be uncertain")
	}
	if got.Tier != TierHigh {
		t.Errorf("Tier = %s, want HIGH", got.Tier)
	}
	if got.Confidence != 95 {
		t.Errorf("Confidence = %d, want 95", got.Confidence)
	}
	if len(got.Signals) == 0 {
		t.Error("expected contributing signals to be recorded")
	}
}

func TestAdditiveHeuristicNewsletter(t *testing.T) {
	now := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	h := newAdditiveForTest(now)

	msg := &Message{
		ID:        "test",
		From:      "noreply@shop.example.com",
		Subject:   "Newsletter: unsubscribe to stop notifications",
		Body:      "promotional marketing content",
		Timestamp: now.Add(-72 * time.Hour),
	}
	got := h.Score(msg)

	if got.Tier != TierLow {
		t.Errorf("Tier = %s, want LOW", got.Tier)
	}
	if got.Confidence != 95 {
		t.Errorf("Confidence = %d, want 95", got.Confidence)
	}
}

func TestAdditiveHeuristicNeutralMail(t *testing.T) {
	now := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	h := newAdditiveForTest(now)

	msg := &Message{
		ID:        "test",
		From:      "alice@example.com",
		Subject:   "hello there ok.",
		Body:      "see you then.",
		Timestamp: now.Add(-2 * time.Hour),
	}
	got := h.Score(msg)

	// 50 base + 5 corporate sender + 5 recency + 3 short subject
	if got.Tier != TierMedium {
		t.Errorf("Tier = %s, want MEDIUM", got.Tier)
	}
	if got.Confidence != 57 {
		t.Errorf("Confidence = %d, want 57", got.Confidence)
	}
}

func TestAdditiveHeuristicDeterministic(t *testing.T) {
	now := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	h := newAdditiveForTest(now)

	msg := &Message{
		ID:        "test",
		From:      "director@corp.example.com",
		Subject:   "Budget proposal for the board meeting",
		Body:      "The revenue numbers need a deadline.",
		Timestamp: now.Add(-6 * time.Hour),
	}

	first := h.Score(msg)
	second := h.Score(msg)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated scoring diverged: %+v vs %+v", first, second)
	}
}

func TestScoreKeywords(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    float64
	}{
		{"subject match earns bonus", "urgent update", "nothing here", 37.5},
		{"body match earns base weight", "status", "this is urgent", 25},
		{"subject and body counted once", "urgent", "urgent", 37.5},
		{"no match", "status", "nothing here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreKeywords(urgencyKeywords, tt.subject, tt.body); got != tt.want {
				t.Errorf("scoreKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreSender(t *testing.T) {
	h := newAdditiveForTest(time.Now())
	tests := []struct {
		from string
		want int
	}{
		{"bob@gmail.com", -5},
		{"ceo@gmail.com", -5}, // personal domain wins over VIP
		{"noreply@alerts.example.com", -15},
		{"ceo@corp.example.com", 15},
		{"jane@corp.example.com", 5},
	}
	for _, tt := range tests {
		if got := h.scoreSender(tt.from); got != tt.want {
			t.Errorf("scoreSender(%q) = %d, want %d", tt.from, got, tt.want)
		}
	}
}

func TestScoreTime(t *testing.T) {
	wednesdayNoon := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	sundayNoon := time.Date(2026, time.January, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		received time.Time
		want     int
	}{
		{"under an hour", wednesdayNoon, wednesdayNoon.Add(-30 * time.Minute), 10},
		{"under four hours", wednesdayNoon, wednesdayNoon.Add(-2 * time.Hour), 5},
		{"older than two days", wednesdayNoon, wednesdayNoon.Add(-72 * time.Hour), -10},
		{"weekend delivery", sundayNoon, sundayNoon.Add(-24 * time.Hour), 5},
		{"after hours delivery", wednesdayNoon, time.Date(2026, time.January, 6, 22, 0, 0, 0, time.UTC), 5},
		{"weekday business hours", wednesdayNoon, time.Date(2026, time.January, 6, 14, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAdditiveForTest(tt.now)
			if got := h.scoreTime(tt.received); got != tt.want {
				t.Errorf("scoreTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    int
	}{
		{"Hi?", 8},
		{"FINAL NOTICE", 13},
		{"Check this out!!!", 12},
		{"Re: project plans", 8},
		{"ok", 3},
		{"ASAP", 3}, // too short for the all-caps bonus
		{strings.Repeat("a", 101), -10},
	}
	for _, tt := range tests {
		if got := scoreSubject(tt.subject); got != tt.want {
			t.Errorf("scoreSubject(%q) = %d, want %d", tt.subject, got, tt.want)
		}
	}
}

func TestAdditiveReasoningCapped(t *testing.T) {
	signals := make([]Signal, 0, 20)
	for i := 0; i < 20; i++ {
		signals = append(signals, Signal{Name: "some very long signal name for the test", Weight: 10})
	}

	reasoning := additiveReasoning(120, signals)
	if len(reasoning) > 200 {
		t.Errorf("reasoning length = %d, want <= 200", len(reasoning))
	}
	if !strings.HasSuffix(reasoning, "...") {
		t.Error("capped reasoning should end with ellipsis")
	}
}
