package core

// Gate decides whether a heuristic result is final or must be escalated to
// the external classifier. Escalation is bounded: once the baseline strategy
// reaches the threshold it is authoritative and no network call is made.
type Gate struct {
	threshold int
}

// NewGate creates a gate with the given escalation confidence threshold.
func NewGate(threshold int) *Gate {
	return &Gate{threshold: threshold}
}

// ShouldEscalate reports whether the external classifier should be invoked.
// Results from the additive strategy are never uncertain and carry derived
// confidence, so callers using that strategy skip the gate entirely.
func (g *Gate) ShouldEscalate(h *HeuristicResult) bool {
	if h == nil || h.Uncertain {
		return true
	}
	return h.Confidence < g.threshold
}

// Threshold returns the configured escalation threshold.
func (g *Gate) Threshold() int {
	return g.threshold
}
