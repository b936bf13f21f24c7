package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

// priorityResponse is the structured response expected from every provider.
type priorityResponse struct {
	Priority   string `json:"priority"`
	Confidence *int   `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// ParseClassification parses a model's response text into a validated
// ExternalResult. The response is an untrusted boundary: anything that is
// not a JSON object carrying exactly the expected fields, in range, is an
// error, which counts as a classifier failure for that variant.
func ParseClassification(responseText, provider string) (*core.ExternalResult, error) {
	var resp priorityResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		// Some models wrap the object in prose; try to extract the JSON
		extracted, ok := extractJSON(responseText)
		if !ok {
			return nil, fmt.Errorf("failed to extract JSON from model response: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}

	tier := core.Tier(strings.ToUpper(strings.TrimSpace(resp.Priority)))
	if !tier.IsValid() {
		return nil, fmt.Errorf("model returned unknown priority %q", resp.Priority)
	}

	if resp.Confidence == nil {
		return nil, fmt.Errorf("model response missing confidence")
	}
	confidence := *resp.Confidence
	if confidence < 0 || confidence > 100 {
		return nil, fmt.Errorf("model returned confidence out of range: %d", confidence)
	}

	reasoning := strings.TrimSpace(resp.Reasoning)
	if reasoning == "" {
		return nil, fmt.Errorf("model response missing reasoning")
	}
	if len(reasoning) > 200 {
		reasoning = reasoning[:197] + "..."
	}

	return &core.ExternalResult{
		Tier:       tier,
		Confidence: confidence,
		Reasoning:  reasoning,
		Provider:   provider,
	}, nil
}

// extractJSON finds the outermost JSON object in a text response.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
