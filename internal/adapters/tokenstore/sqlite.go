package tokenstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/email-triage/internal/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const sessionSchema = `
	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		oauth_json TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

type sessionRow struct {
	Token     string    `db:"token"`
	OAuthJSON string    `db:"oauth_json"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// SQLiteStore is a SQLite implementation of the auth.TokenStore interface,
// for deployments that should survive a restart without forcing everyone
// back through the consent screen.
type SQLiteStore struct {
	db          *sqlx.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteStore creates a new SQLite session store
func NewSQLiteStore(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	store := &SQLiteStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store, nil
}

// Get retrieves a live session
func (s *SQLiteStore) Get(ctx context.Context, token string) (*auth.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT token, oauth_json, created_at, expires_at
		FROM sessions
		WHERE token = ?
	`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if time.Now().After(row.ExpiresAt) {
		return nil, ErrExpired
	}

	var oauthToken oauth2.Token
	if err := json.Unmarshal([]byte(row.OAuthJSON), &oauthToken); err != nil {
		return nil, fmt.Errorf("failed to decode stored token: %w", err)
	}

	return &auth.Session{
		Token:     row.Token,
		OAuth:     &oauthToken,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Set stores a session
func (s *SQLiteStore) Set(ctx context.Context, session *auth.Session) error {
	oauthJSON, err := json.Marshal(session.OAuth)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (token, oauth_json, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, session.Token, string(oauthJSON), session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Delete removes a session
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Cleanup removes expired sessions
func (s *SQLiteStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to clean up expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired sessions", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired sessions
func (s *SQLiteStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up sessions", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database
func (s *SQLiteStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
