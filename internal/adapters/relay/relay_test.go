package relay

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

func relayConfigForTest() config.RelayConfig {
	return config.RelayConfig{
		ListenAddress:    "127.0.0.1:0",
		TierHeader:       "X-Priority-Tier",
		ConfidenceHeader: "X-Priority-Confidence",
		ReasonHeader:     "X-Priority-Reason",
		SourceHeader:     "X-Priority-Source",
	}
}

func sessionForTest(cfg config.RelayConfig) *smtpSession {
	tp := utils.NewTextProcessor(zap.NewNop())
	return &smtpSession{
		relay: NewRelay(nil, zap.NewNop(), tp, cfg, 200),
	}
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain header", "Hello world", "Hello world"},
		{"utf-8 q-encoded", "=?UTF-8?Q?Caf=C3=A9_update?=", "Café update"},
		{"utf-8 b-encoded", "=?UTF-8?B?SGVsbG8gd29ybGQ=?=", "Hello world"},
		{"broken encoding falls back to raw", "=?bogus-charset?Q?x?=", "=?bogus-charset?Q?x?="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeHeader(tt.value); got != tt.want {
				t.Errorf("decodeHeader(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestExtractTextFromMessage(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUND\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"plain text body\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>html body</p>\r\n" +
		"--BOUND--\r\n"

	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	text, err := extractTextFromMessage(msg)
	if err != nil {
		t.Fatalf("extractTextFromMessage() error = %v", err)
	}
	if !strings.Contains(text, "plain text body") {
		t.Errorf("extracted %q, want plain part", text)
	}
	if strings.Contains(text, "html body") {
		t.Errorf("extracted %q, html part should be skipped", text)
	}
}

func TestExtractTextFromSimpleMessage(t *testing.T) {
	raw := "From: a@example.com\r\nSubject: hi\r\n\r\njust a body\r\n"
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	text, err := extractTextFromMessage(msg)
	if err != nil {
		t.Fatalf("extractTextFromMessage() error = %v", err)
	}
	if !strings.Contains(text, "just a body") {
		t.Errorf("extracted %q, want body text", text)
	}
}

func TestAnnotateInjectsPriorityHeaders(t *testing.T) {
	session := sessionForTest(relayConfigForTest())

	raw := []byte("From: a@example.com\r\nSubject: status\r\n\r\noriginal body\r\n")
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	result := &core.Classification{
		Tier:       core.TierHigh,
		Confidence: 90,
		Reasoning:  "Contains urgency keywords",
		Provenance: core.ProvenanceBaseline,
	}
	annotated := string(session.annotate(msg, raw, result))

	for _, want := range []string{
		"X-Priority-Tier: HIGH\r\n",
		"X-Priority-Confidence: 90\r\n",
		"X-Priority-Reason: Contains urgency keywords\r\n",
		"X-Priority-Source: baseline\r\n",
		"original body",
	} {
		if !strings.Contains(annotated, want) {
			t.Errorf("annotated message missing %q", want)
		}
	}
	if !strings.Contains(annotated, "Subject: status") {
		t.Error("original subject dropped")
	}
}

func TestAnnotateSubjectPrefix(t *testing.T) {
	cfg := relayConfigForTest()
	cfg.ModifySubject = true
	cfg.SubjectPrefix = "[HIGH] "
	session := sessionForTest(cfg)

	raw := []byte("From: a@example.com\r\nSubject: outage\r\n\r\nbody\r\n")
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	high := &core.Classification{Tier: core.TierHigh, Confidence: 90, Reasoning: "r", Provenance: core.ProvenanceBaseline}
	annotated := string(session.annotate(msg, raw, high))
	if !strings.Contains(annotated, "Subject: [HIGH] outage\r\n") {
		t.Error("HIGH message subject not prefixed")
	}
	if strings.Count(annotated, "Subject:") != 1 {
		t.Error("duplicate subject header")
	}

	low := &core.Classification{Tier: core.TierLow, Confidence: 95, Reasoning: "r", Provenance: core.ProvenanceBaseline}
	annotated = string(session.annotate(msg, raw, low))
	if strings.Contains(annotated, "[HIGH]") {
		t.Error("non-HIGH message subject was prefixed")
	}
}
