package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/email-triage/internal/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func sessionForTest(token string, expiresAt time.Time) *auth.Session {
	return &auth.Session{
		Token:     token,
		OAuth:     &oauth2.Token{AccessToken: "access-" + token},
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(zap.NewNop(), time.Hour)
	defer store.Stop()
	ctx := context.Background()

	session := sessionForTest("tok1", time.Now().Add(time.Hour))
	if err := store.Set(ctx, session); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "tok1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.OAuth.AccessToken != "access-tok1" {
		t.Errorf("AccessToken = %q", got.OAuth.AccessToken)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemoryStore(zap.NewNop(), time.Hour)
	defer store.Stop()

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpired(t *testing.T) {
	store := NewMemoryStore(zap.NewNop(), time.Hour)
	defer store.Stop()
	ctx := context.Background()

	session := sessionForTest("tok1", time.Now().Add(-time.Minute))
	if err := store.Set(ctx, session); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, err := store.Get(ctx, "tok1")
	if !errors.Is(err, ErrExpired) {
		t.Errorf("Get() error = %v, want ErrExpired", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(zap.NewNop(), time.Hour)
	defer store.Stop()
	ctx := context.Background()

	if err := store.Set(ctx, sessionForTest("tok1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Delete(ctx, "tok1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := store.Get(ctx, "tok1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	store := NewMemoryStore(zap.NewNop(), time.Hour)
	defer store.Stop()
	ctx := context.Background()

	if err := store.Set(ctx, sessionForTest("live", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, sessionForTest("stale", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	if _, err := store.Get(ctx, "live"); err != nil {
		t.Errorf("live session evicted: %v", err)
	}
	if _, err := store.Get(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale session error = %v, want ErrNotFound", err)
	}
}
