package core

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TriageService is the core service for message prioritization. It runs the
// heuristic strategy, escalates uncertain results to the external classifier
// when allowed, merges the outcomes and ranks batches for presentation.
type TriageService struct {
	heuristic      Heuristic
	classifier     Classifier
	gate           *Gate
	merger         *Merger
	logger         *zap.Logger
	escalate       bool
	maxConcurrency int
}

// NewTriageService creates a new triage service. classifier may be nil when
// no provider is configured; escalate should be false for strategies that
// always produce a tier (the additive scorer), true for the baseline
// strategy.
func NewTriageService(
	heuristic Heuristic,
	classifier Classifier,
	gate *Gate,
	merger *Merger,
	logger *zap.Logger,
	escalate bool,
	maxConcurrency int,
) *TriageService {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &TriageService{
		heuristic:      heuristic,
		classifier:     classifier,
		gate:           gate,
		merger:         merger,
		logger:         logger,
		escalate:       escalate,
		maxConcurrency: maxConcurrency,
	}
}

// ClassifyMessage classifies a single message. It never returns an error:
// classification failures degrade to a lower-confidence result with the
// provenance clearly marked.
func (s *TriageService) ClassifyMessage(ctx context.Context, msg *Message) *Classification {
	heuristicResult := s.heuristic.Score(msg)

	var external *ExternalResult
	if s.escalate && s.gate.ShouldEscalate(heuristicResult) {
		external = s.classifyExternal(ctx, msg)
	}

	result := s.merger.Merge(heuristicResult, external)

	s.logger.Debug("Classified message",
		zap.String("message_id", msg.ID),
		zap.String("tier", string(result.Tier)),
		zap.Int("confidence", result.Confidence),
		zap.String("provenance", string(result.Provenance)))

	return result
}

// classifyExternal invokes the provider chain. Any failure is logged and
// reported as "no result" so the merger can fall back.
func (s *TriageService) classifyExternal(ctx context.Context, msg *Message) *ExternalResult {
	if s.classifier == nil {
		return nil
	}

	result, err := s.classifier.Classify(ctx, msg)
	if err != nil {
		s.logger.Warn("External classification unavailable",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return nil
	}
	return result
}

// ClassifyBatch classifies all messages concurrently under a bounded worker
// pool and returns them in ranked order. Each message's result is
// independent; cancelling ctx stops in-flight external calls without
// corrupting any per-message state.
func (s *TriageService) ClassifyBatch(ctx context.Context, msgs []*Message) []Classified {
	batchID := uuid.NewString()
	s.logger.Info("Classifying batch",
		zap.String("batch_id", batchID),
		zap.Int("messages", len(msgs)),
		zap.Int("max_concurrency", s.maxConcurrency))

	classified := make([]Classified, len(msgs))
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for i, msg := range msgs {
		wg.Add(1)
		go func(i int, msg *Message) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			classified[i] = Classified{
				Message:        msg,
				Classification: s.ClassifyMessage(ctx, msg),
			}
		}(i, msg)
	}
	wg.Wait()

	ranked := Rank(classified)

	s.logger.Info("Batch classified", zap.String("batch_id", batchID))
	return ranked
}
