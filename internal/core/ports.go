package core

import (
	"context"
)

// Classifier defines the interface for external model-assisted classification
type Classifier interface {
	// Classify asks an external model to assign a priority tier to a message
	Classify(ctx context.Context, msg *Message) (*ExternalResult, error)
}

// Heuristic defines the interface for local heuristic scoring strategies
type Heuristic interface {
	// Score evaluates a message without any network calls
	Score(msg *Message) *HeuristicResult
}
