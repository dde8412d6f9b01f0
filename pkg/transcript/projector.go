package transcript

import (
	"fmt"
	"time"

	"admissions-be/internal/entity"
)

// Message is one display-ready transcript line.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Ephemeral bool      `json:"ephemeral,omitempty"` // Not persisted; recomputed on read
}

// freeTextKeys are checked in order; the first non-empty match becomes the
// opening user message.
var freeTextKeys = []string{"message", "question", "query", "instructions"}

// Project replays a session and its decision ledger into an ordered message
// list. Deterministic for a fixed input except the running progress line,
// which is recomputed on every read. Decisions must already be sorted by
// created_at ascending; the ledger has no other ordering key.
func Project(session *entity.AgentSession, decisions []*entity.AgentDecision, now time.Time) []Message {
	messages := make([]Message, 0, len(decisions)+4)

	// 1. Opening user turn from the latest request context.
	for _, key := range freeTextKeys {
		if text, ok := session.InputContext[key].(string); ok && text != "" {
			messages = append(messages, Message{
				Role:      "user",
				Content:   text,
				CreatedAt: session.CreatedAt,
			})
			break
		}
	}

	// 2. Processing-started marker.
	if session.StartedAt != nil {
		messages = append(messages, Message{
			Role:      "system",
			Content:   startedMessage(session.AgentType),
			CreatedAt: *session.StartedAt,
		})
	}

	// 3. One assistant message per decision. Decisions recorded after the
	// session reached a terminal state (a slow execution unit racing a
	// timeout sweep) stay in the ledger but are not shown.
	for _, d := range decisions {
		if session.CompletedAt != nil && d.CreatedAt.After(*session.CompletedAt) {
			continue
		}
		messages = append(messages, Message{
			Role:      "assistant",
			Content:   renderDecision(session.AgentType, d),
			CreatedAt: d.CreatedAt,
		})
	}

	// 4. Final summary for completed sessions; a summary that renders empty
	// emits nothing rather than an empty message.
	if session.Status == "completed" && len(session.OutputResult) > 0 {
		if render, ok := summaryRenderers[session.AgentType]; ok {
			if content := render(session.OutputResult); content != "" {
				at := session.CreatedAt
				if session.CompletedAt != nil {
					at = *session.CompletedAt
				}
				messages = append(messages, Message{
					Role:      "assistant",
					Content:   content,
					CreatedAt: at,
				})
			}
		}
	}

	// 5. Failure line.
	if session.Status == "failed" {
		errMsg := "unknown error"
		if session.ErrorMessage != nil && *session.ErrorMessage != "" {
			errMsg = *session.ErrorMessage
		}
		at := session.CreatedAt
		if session.CompletedAt != nil {
			at = *session.CompletedAt
		}
		messages = append(messages, Message{
			Role:      "system",
			Content:   fmt.Sprintf("Error: %s", errMsg),
			CreatedAt: at,
		})
	}

	// 6. Ephemeral progress line while running.
	if session.Status == "running" {
		messages = append(messages, Message{
			Role:      "system",
			Content:   fmt.Sprintf("Processing... %d/%d items", session.ProcessedItems, session.TotalItems),
			CreatedAt: now,
			Ephemeral: true,
		})
	}

	return messages
}

func renderDecision(agentType string, d *entity.AgentDecision) string {
	if render, ok := decisionRenderers[renderKey{AgentType: agentType, DecisionType: d.DecisionType}]; ok {
		if content := render(d); content != "" {
			return content
		}
	}
	if d.Reasoning != nil && *d.Reasoning != "" {
		return *d.Reasoning
	}
	return fmt.Sprintf("Processed: %s", d.DecisionType)
}
