package core

import (
	"testing"
	"time"

	"github.com/mikey/email-triage/internal/vip"
	"go.uber.org/zap"
)

func newBaselineForTest() *BaselineHeuristic {
	return NewBaselineHeuristic(vip.NewChecker(BaselineVIPIndicators, nil, zap.NewNop()))
}

func TestBaselineHeuristic(t *testing.T) {
	tests := []struct {
		name           string
		from           string
		subject        string
		body           string
		wantTier       Tier
		wantConfidence int
		wantReasoning  string
		wantUncertain  bool
	}{
		{
			name:           "newsletter sender",
			from:           "newsletter@shop.example.com",
			subject:        "Weekly digest",
			body:           "This week's highlights",
			wantTier:       TierLow,
			wantConfidence: 95,
			wantReasoning:  "Newsletter/automated content",
		},
		{
			name:           "spam indicator in subject",
			from:           "events@example.com",
			subject:        "Click unsubscribe to stop these emails",
			body:           "",
			wantTier:       TierLow,
			wantConfidence: 95,
			wantReasoning:  "Newsletter/automated content",
		},
		{
			name:           "urgency in subject",
			from:           "alice@example.com",
			subject:        "URGENT: server is down",
			body:           "Please take a look",
			wantTier:       TierHigh,
			wantConfidence: 90,
			wantReasoning:  "Contains urgency keywords",
		},
		{
			name:           "urgency in body only",
			from:           "alice@example.com",
			subject:        "Quick question",
			body:           "Need an answer ASAP please",
			wantTier:       TierHigh,
			wantConfidence: 90,
			wantReasoning:  "Contains urgency keywords",
		},
		{
			name:           "spam beats urgency",
			from:           "noreply@alerts.example.com",
			subject:        "Urgent security notice",
			body:           "",
			wantTier:       TierLow,
			wantConfidence: 95,
			wantReasoning:  "Newsletter/automated content",
		},
		{
			name:           "vip sender",
			from:           "ceo@company.example.com",
			subject:        "Thoughts on the roadmap",
			body:           "When you have a minute",
			wantTier:       TierHigh,
			wantConfidence: 85,
			wantReasoning:  "VIP sender",
		},
		{
			name:           "urgency beats vip",
			from:           "ceo@company.example.com",
			subject:        "Critical issue in production",
			body:           "",
			wantTier:       TierHigh,
			wantConfidence: 90,
			wantReasoning:  "Contains urgency keywords",
		},
		{
			name:          "no rule matched",
			from:          "alice@example.com",
			subject:       "Lunch on Friday",
			body:          "Are you free?",
			wantUncertain: true,
		},
		{
			name:           "matching is case-insensitive",
			from:           "NOREPLY@SHOP.EXAMPLE.COM",
			subject:        "Order confirmation",
			body:           "",
			wantTier:       TierLow,
			wantConfidence: 95,
			wantReasoning:  "Newsletter/automated content",
		},
	}

	h := newBaselineForTest()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{
				ID:        "test",
				From:      tt.from,
				Subject:   tt.subject,
				Body:      tt.body,
				Timestamp: time.Now(),
			}
			got := h.Score(msg)

			if got.Uncertain != tt.wantUncertain {
				t.Fatalf("Uncertain = %v, want %v", got.Uncertain, tt.wantUncertain)
			}
			if tt.wantUncertain {
				return
			}
			if got.Tier != tt.wantTier {
				t.Errorf("Tier = %s, want %s", got.Tier, tt.wantTier)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %d, want %d", got.Confidence, tt.wantConfidence)
			}
			if got.Reasoning != tt.wantReasoning {
				t.Errorf("Reasoning = %q, want %q", got.Reasoning, tt.wantReasoning)
			}
		})
	}
}

func TestBaselineHeuristicExtraVIPs(t *testing.T) {
	vips := vip.NewChecker(BaselineVIPIndicators, []string{"alice@example.com"}, zap.NewNop())
	h := NewBaselineHeuristic(vips)

	got := h.Score(&Message{From: "Alice@Example.com", Subject: "Hello", Body: "Hi"})
	if got.Uncertain {
		t.Fatal("expected VIP match, got uncertain")
	}
	if got.Tier != TierHigh || got.Confidence != 85 {
		t.Errorf("got %s/%d, want HIGH/85", got.Tier, got.Confidence)
	}
}
