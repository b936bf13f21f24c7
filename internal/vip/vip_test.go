package vip

import (
	"testing"

	"go.uber.org/zap"
)

func TestCheckerMatch(t *testing.T) {
	checker := NewChecker([]string{"ceo", "board"}, []string{" Alice@Example.com "}, zap.NewNop())

	tests := []struct {
		from string
		want bool
	}{
		{"ceo@corp.example.com", true},
		{"CEO@CORP.EXAMPLE.COM", true},
		{"the.ceo.office@corp.example.com", true},
		{"board-liaison@corp.example.com", true},
		{"alice@example.com", true},
		{"bob@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := checker.Match(tt.from); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestCheckerIgnoresBlankExtras(t *testing.T) {
	checker := NewChecker(nil, []string{"", "  "}, zap.NewNop())
	if checker.Match("anyone@example.com") {
		t.Error("blank extras must not match everything")
	}
}
