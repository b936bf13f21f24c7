// Package gmail fetches a user's inbox and normalizes it into the plain
// message records the classification engine consumes: HTML stripped, body
// bounded to the excerpt length, timestamps normalized to UTC.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Source reads messages from the Gmail API.
type Source struct {
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	excerptLength int
	query         string
	maxResults    int64
}

// NewSource creates a Gmail message source.
func NewSource(logger *zap.Logger, textProcessor *utils.TextProcessor, excerptLength int, query string, maxResults int64) *Source {
	return &Source{
		logger:        logger,
		textProcessor: textProcessor,
		excerptLength: excerptLength,
		query:         query,
		maxResults:    maxResults,
	}
}

// Fetch lists the newest inbox messages for the authorized user and returns
// them as normalized records. limit overrides the configured maximum when
// positive.
func (s *Source) Fetch(ctx context.Context, ts oauth2.TokenSource, limit int64) ([]*core.Message, error) {
	svc, err := gmailv1.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	maxResults := s.maxResults
	if limit > 0 {
		maxResults = limit
	}

	list, err := svc.Users.Messages.List("me").
		Q(s.query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*core.Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		full, err := svc.Users.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			s.logger.Warn("Failed to fetch message, skipping",
				zap.String("message_id", ref.Id),
				zap.Error(err))
			continue
		}
		messages = append(messages, s.normalize(full))
	}

	s.logger.Info("Fetched inbox messages", zap.Int("count", len(messages)))
	return messages, nil
}

// normalize converts a Gmail message into the engine's message record.
func (s *Source) normalize(msg *gmailv1.Message) *core.Message {
	subject := header(msg.Payload, "Subject")
	if subject == "" {
		subject = "(No Subject)"
	}

	timestamp := time.Now().UTC()
	if date := header(msg.Payload, "Date"); date != "" {
		if parsed, err := mail.ParseDate(date); err == nil {
			timestamp = parsed.UTC()
		}
	}

	body := s.extractBody(msg.Payload)

	unread := false
	for _, label := range msg.LabelIds {
		if label == "UNREAD" {
			unread = true
			break
		}
	}

	return &core.Message{
		ID:        msg.Id,
		From:      header(msg.Payload, "From"),
		Subject:   subject,
		Body:      s.textProcessor.Excerpt(body, s.excerptLength),
		Timestamp: timestamp,
		Read:      !unread,
	}
}

// extractBody walks the MIME payload preferring a text/plain part; an HTML
// part is accepted as a fallback with its markup stripped.
func (s *Source) extractBody(payload *gmailv1.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBase64URL(payload.Body.Data)
	}

	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			return decodeBase64URL(part.Body.Data)
		}
	}

	for _, part := range payload.Parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			return s.textProcessor.StripHTML(decodeBase64URL(part.Body.Data))
		}
	}

	// Nested multipart containers
	for _, part := range payload.Parts {
		if len(part.Parts) > 0 {
			if body := s.extractBody(part); body != "" {
				return body
			}
		}
	}

	return ""
}

func header(payload *gmailv1.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return data
		}
	}
	return string(decoded)
}
