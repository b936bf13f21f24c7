// Package relay implements an SMTP tagging relay: mail is accepted from the
// MTA, classified, annotated with priority headers and forwarded to the
// upstream listener. Classification failures never block delivery; the mail
// is simply forwarded with the engine's fallback classification.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// Relay is the SMTP frontend.
type Relay struct {
	service       *core.TriageService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	cfg           config.RelayConfig
	excerptLength int
	server        *smtp.Server
}

// NewRelay creates a new SMTP tagging relay
func NewRelay(
	service *core.TriageService,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	cfg config.RelayConfig,
	excerptLength int,
) *Relay {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[HIGH] "
	}

	return &Relay{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		cfg:           cfg,
		excerptLength: excerptLength,
	}
}

// Start starts the SMTP server
func (r *Relay) Start() error {
	r.server = smtp.NewServer(&smtpBackend{relay: r})

	r.server.Addr = r.cfg.ListenAddress
	r.server.Domain = "localhost"
	r.server.ReadTimeout = 30 * time.Second
	r.server.WriteTimeout = 30 * time.Second
	r.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	r.server.MaxRecipients = 50
	r.server.AllowInsecureAuth = true

	r.logger.Info("SMTP relay starting", zap.String("address", r.cfg.ListenAddress))

	go func() {
		if err := r.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				r.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (r *Relay) Stop() error {
	if r.server != nil {
		return r.server.Close()
	}
	return nil
}

// normalize builds the engine's message record from a parsed email.
func (r *Relay) normalize(sender string, msg *mail.Message) *core.Message {
	from := msg.Header.Get("From")
	if from == "" {
		from = sender
	}

	subject := decodeHeader(msg.Header.Get("Subject"))

	timestamp := time.Now().UTC()
	if date, err := msg.Header.Date(); err == nil {
		timestamp = date.UTC()
	}

	text, err := extractTextFromMessage(msg)
	if err != nil {
		r.logger.Warn("Failed to extract text content", zap.Error(err))
	}

	return &core.Message{
		ID:        uuid.NewString(),
		From:      decodeHeader(from),
		Subject:   subject,
		Body:      r.textProcessor.Excerpt(r.textProcessor.StripHTML(text), r.excerptLength),
		Timestamp: timestamp,
	}
}

// forward sends the annotated email to the upstream listener.
func (r *Relay) forward(sender string, recipients []string, emailData []byte) error {
	upstreamAddr := fmt.Sprintf("%s:%d", r.cfg.UpstreamHost, r.cfg.UpstreamPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", upstreamAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to upstream: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			r.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		r.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	relay *Relay
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		relay:      b.relay,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	relay      *Relay
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the relay)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message, injects the priority headers and forwards
// the annotated email upstream.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.relay.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.relay.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	message := s.relay.normalize(s.sender, msg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := s.relay.service.ClassifyMessage(ctx, message)

	annotated := s.annotate(msg, rawData, result)

	if s.relay.cfg.UpstreamEnabled {
		if err := s.relay.forward(s.sender, s.recipients, annotated); err != nil {
			s.relay.logger.Error("Failed to forward email upstream",
				zap.Error(err),
				zap.String("sender", message.From))
			return err
		}
	} else {
		s.relay.logger.Warn("Upstream forwarding disabled, message dropped after classification")
	}

	s.relay.logger.Info("Relayed email",
		zap.String("from", message.From),
		zap.String("tier", string(result.Tier)),
		zap.Int("confidence", result.Confidence),
		zap.String("provenance", string(result.Provenance)))

	return nil
}

// annotate rebuilds the email with the priority headers prepended, keeping
// the original body bytes intact so MIME parts and attachments survive.
func (s *smtpSession) annotate(msg *mail.Message, rawData []byte, result *core.Classification) []byte {
	cfg := s.relay.cfg
	var annotated bytes.Buffer

	fmt.Fprintf(&annotated, "%s: %s\r\n", cfg.TierHeader, result.Tier)
	fmt.Fprintf(&annotated, "%s: %d\r\n", cfg.ConfidenceHeader, result.Confidence)
	fmt.Fprintf(&annotated, "%s: %s\r\n", cfg.ReasonHeader, result.Reasoning)
	fmt.Fprintf(&annotated, "%s: %s\r\n", cfg.SourceHeader, result.Provenance)

	prefixSubject := cfg.ModifySubject && result.Tier == core.TierHigh && cfg.SubjectPrefix != ""
	if prefixSubject {
		subject := decodeHeader(msg.Header.Get("Subject"))
		if !strings.HasPrefix(subject, cfg.SubjectPrefix) {
			fmt.Fprintf(&annotated, "Subject: %s%s\r\n", cfg.SubjectPrefix, subject)
		} else {
			prefixSubject = false
		}
	}

	for key, values := range msg.Header {
		if prefixSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&annotated, "%s: %s\r\n", key, value)
		}
	}

	fmt.Fprintf(&annotated, "\r\n")

	// Locate the original body in the raw bytes
	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx != -1 {
		annotated.Write(rawData[idx+4:])
	} else if idx := bytes.Index(rawData, []byte("\n\n")); idx != -1 {
		annotated.Write(rawData[idx+2:])
	}

	return annotated.Bytes()
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
