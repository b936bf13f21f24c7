// Package auth implements the Google OAuth handshake for the mail source
// and the opaque session tokens handed to the frontend. The engine itself
// never sees credentials; it only consumes the normalized messages the
// authorized source produces.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GmailReadonlyScope is the only scope requested: the dashboard reads mail,
// it never mutates it.
const GmailReadonlyScope = "https://www.googleapis.com/auth/gmail.readonly"

// ErrNotAuthenticated is returned when a session token is unknown or expired.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session binds an opaque session token to the Google credential obtained
// for it. Sessions expire after the configured TTL and are then evicted by
// the store.
type Session struct {
	Token     string
	OAuth     *oauth2.Token
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenStore persists sessions with TTL eviction. Implementations must be
// safe for concurrent readers with a single writer per session.
type TokenStore interface {
	// Get retrieves a live session; expired sessions are a miss
	Get(ctx context.Context, token string) (*Session, error)

	// Set stores a session
	Set(ctx context.Context, session *Session) error

	// Delete removes a session
	Delete(ctx context.Context, token string) error

	// Cleanup removes expired sessions
	Cleanup(ctx context.Context) error
}

// Manager drives the OAuth code exchange and session lifecycle.
type Manager struct {
	oauth  *oauth2.Config
	store  TokenStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager creates an auth manager for the given Google OAuth client.
func NewManager(clientID, clientSecret, redirectURL string, store TokenStore, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{GmailReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Configured reports whether OAuth credentials are present.
func (m *Manager) Configured() bool {
	return m.oauth.ClientID != "" && m.oauth.ClientSecret != ""
}

// AuthURL returns the Google consent URL to redirect the user to.
func (m *Manager) AuthURL() string {
	return m.oauth.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"))
}

// Exchange trades an authorization code for a Google token and issues an
// opaque session token for it.
func (m *Manager) Exchange(ctx context.Context, code string) (string, error) {
	token, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	now := time.Now()
	session := &Session{
		Token:     uuid.NewString(),
		OAuth:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Set(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	m.logger.Info("Issued session token", zap.Time("expires_at", session.ExpiresAt))
	return session.Token, nil
}

// TokenSource resolves a session token to an OAuth token source for API
// calls. Unknown or expired sessions yield ErrNotAuthenticated.
func (m *Manager) TokenSource(ctx context.Context, sessionToken string) (oauth2.TokenSource, error) {
	session, err := m.store.Get(ctx, sessionToken)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	return m.oauth.TokenSource(ctx, session.OAuth), nil
}

// Authenticated reports whether a session token is live.
func (m *Manager) Authenticated(ctx context.Context, sessionToken string) bool {
	if sessionToken == "" {
		return false
	}
	_, err := m.store.Get(ctx, sessionToken)
	return err == nil
}

// SignOut discards a session.
func (m *Manager) SignOut(ctx context.Context, sessionToken string) error {
	return m.store.Delete(ctx, sessionToken)
}
