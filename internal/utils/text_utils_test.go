package utils

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestExcerpt(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short text unchanged", "hello", 200, "hello"},
		{"exact length unchanged", strings.Repeat("a", 10), 10, strings.Repeat("a", 10)},
		{"long text capped with marker", strings.Repeat("a", 250), 200, strings.Repeat("a", 200) + "..."},
		{"zero limit means no limit", strings.Repeat("a", 250), 0, strings.Repeat("a", 250)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tp.Excerpt(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerptKeepsValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Cut point lands inside a multi-byte rune
	text := strings.Repeat("a", 199) + "é"
	got := tp.Excerpt(text, 200)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Excerpt() = %q, want ellipsis suffix", got)
	}
	if strings.ContainsRune(got, '�') {
		t.Error("excerpt contains replacement character")
	}
}

func TestStripHTML(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		text string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"no markup", "no markup"},
		{"  <div>\n trimmed \n</div>  ", "trimmed"},
	}
	for _, tt := range tests {
		if got := tp.StripHTML(tt.text); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	short := tp.TruncateText("hello", 100)
	if short != "hello" {
		t.Errorf("TruncateText() = %q, want unchanged", short)
	}

	long := tp.TruncateText(strings.Repeat("a", 100), 10)
	if !strings.HasPrefix(long, strings.Repeat("a", 10)) {
		t.Errorf("TruncateText() = %q, want 10-byte prefix kept", long)
	}
	if !strings.Contains(long, "Content truncated") {
		t.Error("truncated text missing marker")
	}
}
