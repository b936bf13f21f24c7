// Package llm holds the prompt and response contract shared by every
// external classifier variant. All providers receive the same prompt and
// must come back with the same three-field JSON object.
package llm

import (
	"fmt"
	"time"

	"github.com/mikey/email-triage/internal/core"
)

// Instruction is the fixed instruction prepended to every classification
// request. It enumerates the required fields so responses can be validated
// strictly.
const Instruction = "You are an AI assistant that analyzes emails for priority ranking " +
	"for busy executives. Respond with ONLY a JSON object containing " +
	"priority (HIGH, MEDIUM, LOW), confidence (0-100), and reasoning."

const promptFormat = `Analyze this email for priority ranking:

FROM: %s
SUBJECT: %s
DATE: %s
BODY: %s

Consider:
- Urgency indicators (deadlines, time constraints)
- Sender importance (executive, client, partner)
- Action requirements
- Business impact
- Personal importance cues

Respond with JSON:
{
  "priority": "HIGH|MEDIUM|LOW",
  "confidence": 85,
  "reasoning": "Brief explanation"
}`

// BuildPrompt renders the classification prompt for a message. body is the
// already processed (truncated/sanitized) body excerpt.
func BuildPrompt(msg *core.Message, body string) string {
	return fmt.Sprintf(promptFormat,
		msg.From,
		msg.Subject,
		msg.Timestamp.UTC().Format(time.RFC1123),
		body,
	)
}
