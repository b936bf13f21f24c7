package factory

import (
	"fmt"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/vip"
	"go.uber.org/zap"
)

// HeuristicFactory creates heuristic scorers based on configuration
type HeuristicFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHeuristicFactory creates a new heuristic factory
func NewHeuristicFactory(cfg *config.Config, logger *zap.Logger) *HeuristicFactory {
	return &HeuristicFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHeuristic creates the configured heuristic strategy. The baseline
// strategy declines to guess on most messages and relies on escalation; the
// additive strategy always produces a tier from its weighted score.
func (f *HeuristicFactory) CreateHeuristic() (core.Heuristic, error) {
	triageConfig, err := f.cfg.GetTriage()
	if err != nil {
		return nil, err
	}

	switch triageConfig.Strategy {
	case "baseline":
		vips := vip.NewChecker(core.BaselineVIPIndicators, triageConfig.VIPSenders, f.logger)
		return core.NewBaselineHeuristic(vips), nil
	case "additive":
		vips := vip.NewChecker(core.AdditiveVIPIndicators, triageConfig.VIPSenders, f.logger)
		return core.NewAdditiveHeuristic(vips), nil
	default:
		return nil, fmt.Errorf("unsupported heuristic strategy: %s", triageConfig.Strategy)
	}
}
