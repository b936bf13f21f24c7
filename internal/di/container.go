package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/chain"
	"github.com/mikey/email-triage/internal/adapters/gmail"
	"github.com/mikey/email-triage/internal/auth"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/ports"
	"github.com/mikey/email-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewHeuristicFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTokenStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register triage engine configuration
	if err := container.Provide(func(cfg *config.Config) (config.TriageConfig, error) {
		return cfg.GetTriage()
	}); err != nil {
		return nil, err
	}

	// Register provider chain
	if err := container.Provide(func(f *factory.LLMFactory) (*chain.Chain, error) {
		return f.CreateChain()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *chain.Chain) core.Classifier {
		return c
	}); err != nil {
		return nil, err
	}

	// Register heuristic strategy
	if err := container.Provide(func(f *factory.HeuristicFactory) (core.Heuristic, error) {
		return f.CreateHeuristic()
	}); err != nil {
		return nil, err
	}

	// Register confidence gate and result merger
	if err := container.Provide(func(tc config.TriageConfig) *core.Gate {
		return core.NewGate(tc.EscalationThreshold)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(tc config.TriageConfig) *core.Merger {
		return core.NewMerger(tc.EscalationThreshold)
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(func(
		tc config.TriageConfig,
		heuristic core.Heuristic,
		classifier core.Classifier,
		gate *core.Gate,
		merger *core.Merger,
		logger *zap.Logger,
	) *core.TriageService {
		escalate := tc.Strategy == "baseline"
		return core.NewTriageService(heuristic, classifier, gate, merger, logger, escalate, tc.MaxConcurrency)
	}); err != nil {
		return nil, err
	}

	// Register session token store
	if err := container.Provide(func(f *factory.TokenStoreFactory) (auth.TokenStore, error) {
		return f.CreateTokenStore()
	}); err != nil {
		return nil, err
	}

	// Register OAuth manager
	if err := container.Provide(func(cfg *config.Config, store auth.TokenStore, logger *zap.Logger) (*auth.Manager, error) {
		authConfig, err := cfg.GetAuth()
		if err != nil {
			return nil, err
		}
		return auth.NewManager(
			authConfig.ClientID,
			authConfig.ClientSecret,
			authConfig.RedirectURL,
			store,
			authConfig.TokenTTL,
			logger,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register mail source
	if err := container.Provide(func(
		cfg *config.Config,
		tc config.TriageConfig,
		logger *zap.Logger,
		textProcessor *utils.TextProcessor,
	) *gmail.Source {
		return gmail.NewSource(
			logger,
			textProcessor,
			tc.ExcerptLength,
			cfg.GetString("gmail.query"),
			int64(cfg.GetInt("gmail.max_results")),
		)
	}); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
