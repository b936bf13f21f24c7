package core

import (
	"time"
)

// Tier is the priority class assigned to a message.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// IsValid reports whether t is one of the three known tiers.
func (t Tier) IsValid() bool {
	return t == TierHigh || t == TierMedium || t == TierLow
}

// Provenance records which part of the engine produced a classification.
type Provenance string

const (
	ProvenanceBaseline Provenance = "baseline"
	ProvenanceAI       Provenance = "ai"
	ProvenanceFallback Provenance = "fallback"
)

// Message is a normalized inbound message as produced by a mail source.
// Subject and Body are plain text (HTML already stripped); Body is an
// excerpt bounded by the source's excerpt length.
type Message struct {
	ID        string
	From      string
	Subject   string
	Body      string
	Timestamp time.Time
	Read      bool
}

// Signal is a single named contribution to an additive score.
type Signal struct {
	Name   string
	Weight int
}

// HeuristicResult is the output of a heuristic scoring strategy.
// Uncertain means no rule matched and the message should be escalated;
// in that case Tier and Confidence are undefined.
type HeuristicResult struct {
	Tier       Tier
	Confidence int
	Reasoning  string
	Uncertain  bool
	Signals    []Signal
}

// ExternalResult is a validated classification from an external model.
type ExternalResult struct {
	Tier       Tier
	Confidence int
	Reasoning  string
	Provider   string
}

// Classification is the final, always well-formed triage decision for a
// message: tier is one of the three values, confidence is in [0,100] and
// reasoning is never empty.
type Classification struct {
	Tier       Tier       `json:"tier"`
	Confidence int        `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
	Provenance Provenance `json:"provenance"`
	Provider   string     `json:"provider,omitempty"`
}

// Classified pairs a message with its classification for ranking and
// presentation.
type Classified struct {
	Message        *Message
	Classification *Classification
}
