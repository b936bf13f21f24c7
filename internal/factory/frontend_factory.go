package factory

import (
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/gmail"
	"github.com/mikey/email-triage/internal/adapters/httpapi"
	"github.com/mikey/email-triage/internal/adapters/relay"
	"github.com/mikey/email-triage/internal/auth"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// FrontendFactory creates serving frontends based on configuration
type FrontendFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.TriageService
	authMgr       *auth.Manager
	source        *gmail.Source
	textProcessor *utils.TextProcessor
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.TriageService,
	authMgr *auth.Manager,
	source *gmail.Source,
	textProcessor *utils.TextProcessor,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		authMgr:       authMgr,
		source:        source,
		textProcessor: textProcessor,
	}
}

// CreateFrontend creates a frontend based on the configuration
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	frontendType := f.cfg.GetString("server.frontend")

	switch frontendType {
	case "http":
		return httpapi.NewServer(
			f.service,
			f.authMgr,
			f.source,
			f.logger,
			f.cfg.GetString("server.listen_address"),
		), nil
	case "relay":
		triageConfig, err := f.cfg.GetTriage()
		if err != nil {
			return nil, err
		}
		return relay.NewRelay(
			f.service,
			f.logger,
			f.textProcessor,
			f.cfg.GetRelay(),
			triageConfig.ExcerptLength,
		), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", frontendType)
	}
}
