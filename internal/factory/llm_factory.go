package factory

import (
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/bedrock"
	"github.com/mikey/email-triage/internal/adapters/chain"
	"github.com/mikey/email-triage/internal/adapters/gemini"
	"github.com/mikey/email-triage/internal/adapters/openai"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory builds the classifier chain from the configured providers
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateChain builds the provider chain in configured preference order.
// Providers without credentials are skipped rather than treated as errors,
// so a deployment with a single API key still gets a working chain.
func (f *LLMFactory) CreateChain() (*chain.Chain, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}

	var providers []chain.Provider
	for _, name := range llmConfig.Providers {
		provider, err := f.createProvider(name)
		if err != nil {
			return nil, err
		}
		if provider == nil {
			f.logger.Info("Skipping unconfigured provider", zap.String("provider", name))
			continue
		}
		providers = append(providers, *provider)
	}

	if len(providers) == 0 {
		f.logger.Warn("No LLM providers configured, heuristic results will not be escalated")
	}

	return chain.New(
		providers,
		llmConfig.Timeout,
		llmConfig.BreakerMaxFailures,
		llmConfig.BreakerCooldown,
		f.logger,
	), nil
}

func (f *LLMFactory) createProvider(name string) (*chain.Provider, error) {
	switch name {
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		if !factory.Configured() {
			return nil, nil
		}
		client, err := factory.CreateClient()
		if err != nil {
			return nil, err
		}
		return &chain.Provider{Name: client.Name(), Classifier: client}, nil
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		if !factory.Configured() {
			return nil, nil
		}
		client, err := factory.CreateClient()
		if err != nil {
			return nil, err
		}
		return &chain.Provider{Name: client.Name(), Classifier: client}, nil
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		if !factory.Configured() {
			return nil, nil
		}
		client, err := factory.CreateClient()
		if err != nil {
			return nil, err
		}
		return &chain.Provider{Name: client.Name(), Classifier: client}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", name)
	}
}
