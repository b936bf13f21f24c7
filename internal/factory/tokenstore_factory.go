package factory

import (
	"fmt"
	"time"

	"github.com/mikey/email-triage/internal/adapters/tokenstore"
	"github.com/mikey/email-triage/internal/auth"
	"github.com/mikey/email-triage/internal/config"
	"go.uber.org/zap"
)

// TokenStoreFactory creates session token stores based on configuration
type TokenStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTokenStoreFactory creates a new token store factory
func NewTokenStoreFactory(cfg *config.Config, logger *zap.Logger) *TokenStoreFactory {
	return &TokenStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTokenStore creates a token store based on the configuration
func (f *TokenStoreFactory) CreateTokenStore() (auth.TokenStore, error) {
	storeType := f.cfg.GetString("tokenstore.type")
	cleanupFreq, err := f.cfg.GetDuration("tokenstore.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid tokenstore.cleanup_frequency: %w", err)
	}
	if cleanupFreq <= 0 {
		cleanupFreq = 10 * time.Minute
	}

	switch storeType {
	case "memory":
		return tokenstore.NewMemoryStore(f.logger, cleanupFreq), nil
	case "sqlite":
		return tokenstore.NewSQLiteStore(
			f.cfg.GetString("tokenstore.sqlite_path"),
			f.logger,
			cleanupFreq,
		)
	default:
		return nil, fmt.Errorf("unsupported token store type: %s", storeType)
	}
}
