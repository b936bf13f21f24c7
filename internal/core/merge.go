package core

// FallbackReasoning is the reasoning attached when no analysis succeeded.
const FallbackReasoning = "Unable to analyze - defaulted to medium priority"

// Merger combines the heuristic result and an optional external result into
// the final classification. It guarantees a well-formed Classification for
// every input: tier always one of the three values, confidence in range,
// reasoning never empty.
type Merger struct {
	threshold int
}

// NewMerger creates a merger using the same confidence threshold as the gate.
func NewMerger(threshold int) *Merger {
	return &Merger{threshold: threshold}
}

// Merge picks the winning result. An authoritative heuristic wins outright;
// otherwise the external result is carried unchanged; otherwise the
// heuristic's best-effort guess; otherwise a fixed MEDIUM default.
func (m *Merger) Merge(h *HeuristicResult, ext *ExternalResult) *Classification {
	if h != nil && !h.Uncertain && h.Confidence >= m.threshold {
		return &Classification{
			Tier:       h.Tier,
			Confidence: h.Confidence,
			Reasoning:  h.Reasoning,
			Provenance: ProvenanceBaseline,
		}
	}

	if ext != nil {
		return &Classification{
			Tier:       ext.Tier,
			Confidence: ext.Confidence,
			Reasoning:  ext.Reasoning,
			Provenance: ProvenanceAI,
			Provider:   ext.Provider,
		}
	}

	if h != nil && !h.Uncertain {
		return &Classification{
			Tier:       h.Tier,
			Confidence: h.Confidence,
			Reasoning:  h.Reasoning,
			Provenance: ProvenanceBaseline,
		}
	}

	return &Classification{
		Tier:       TierMedium,
		Confidence: 50,
		Reasoning:  FallbackReasoning,
		Provenance: ProvenanceFallback,
	}
}
