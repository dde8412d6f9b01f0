package transcript

import (
	"fmt"

	"admissions-be/internal/entity"
)

// decisionRenderer produces the assistant-message body for one decision.
type decisionRenderer func(d *entity.AgentDecision) string

type renderKey struct {
	AgentType    string
	DecisionType string
}

// decisionRenderers maps (agentType, decisionType) to a display body.
// Unmapped combinations fall back to the decision's reasoning, then to a
// generic "Processed: {type}" line.
var decisionRenderers = map[renderKey]decisionRenderer{
	{"document_reviewer", "document_approved"}: func(d *entity.AgentDecision) string {
		return fmt.Sprintf("Document approved: %s", stringValue(d.DecisionValue, "document_name", "document"))
	},
	{"document_reviewer", "document_flagged"}: func(d *entity.AgentDecision) string {
		return fmt.Sprintf("Document flagged: %s", stringValue(d.DecisionValue, "flag_reason", "unspecified reason"))
	},
	{"aps_ranking", "aps_score_calculated"}: func(d *entity.AgentDecision) string {
		return fmt.Sprintf("APS Score: %s (Best 6: %s)",
			numberValue(d.DecisionValue, "total_aps"),
			numberValue(d.DecisionValue, "best_six_total"))
	},
	{"aps_ranking", "eligibility_checked"}: func(d *entity.AgentDecision) string {
		return fmt.Sprintf("Eligibility checked: %s", stringValue(d.DecisionValue, "outcome", "see details"))
	},
	{"aps_ranking", "ranking_assigned"}: func(d *entity.AgentDecision) string {
		return fmt.Sprintf("Rank #%s: %s",
			numberValue(d.DecisionValue, "rank_position"),
			stringValue(d.DecisionValue, "recommendation", "pending"))
	},
	{"reviewer_assistant", "question_answer"}: func(d *entity.AgentDecision) string {
		return stringValue(d.DecisionValue, "answer", "")
	},
	{"analytics", "chart_generated"}: func(d *entity.AgentDecision) string {
		return fmt.Sprintf("Chart generated: %s", stringValue(d.DecisionValue, "title", "untitled"))
	},
}

// summaryRenderer produces the final assistant summary for a completed
// session. Returning "" suppresses the message entirely.
type summaryRenderer func(output map[string]interface{}) string

var summaryRenderers = map[string]summaryRenderer{
	"document_reviewer": func(output map[string]interface{}) string {
		approved := numberValue(output, "approved_count")
		flagged := numberValue(output, "flagged_count")
		if approved == "" && flagged == "" {
			return ""
		}
		return fmt.Sprintf("Review complete: %s approved, %s flagged", orZero(approved), orZero(flagged))
	},
	"aps_ranking": func(output map[string]interface{}) string {
		total := numberValue(output, "total")
		if total == "" {
			return ""
		}
		return fmt.Sprintf("Ranking applied to %s applicants (%s auto-accept, %s conditional, %s waitlist, %s flagged)",
			total,
			orZero(numberValue(output, "auto_accept")),
			orZero(numberValue(output, "conditional")),
			orZero(numberValue(output, "waitlist")),
			orZero(numberValue(output, "rejection_flagged")))
	},
	"reviewer_assistant": func(output map[string]interface{}) string {
		return stringValue(output, "answer", "")
	},
	"analytics": func(output map[string]interface{}) string {
		return stringValue(output, "summary", "")
	},
	"notification_sender": func(output map[string]interface{}) string {
		sent := numberValue(output, "sent_count")
		if sent == "" {
			return ""
		}
		return fmt.Sprintf("Sent %s notifications", sent)
	},
}

// startedMessages is the per-agent "processing started" system line.
var startedMessages = map[string]string{
	"document_reviewer":   "Document review started",
	"aps_ranking":         "Merit ranking started",
	"reviewer_assistant":  "Looking into your question...",
	"analytics":           "Running analytics query",
	"notification_sender": "Preparing notifications",
}

func startedMessage(agentType string) string {
	if msg, ok := startedMessages[agentType]; ok {
		return msg
	}
	return "Processing started"
}

func stringValue(doc map[string]interface{}, key, fallback string) string {
	if doc == nil {
		return fallback
	}
	if v, ok := doc[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// numberValue renders a numeric document field without a trailing ".0" for
// whole numbers; JSON decoding yields float64 for every number.
func numberValue(doc map[string]interface{}, key string) string {
	if doc == nil {
		return ""
	}
	switch v := doc[key].(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case string:
		return v
	default:
		return ""
	}
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
