package dispatch

import (
	"context"

	"admissions-be/internal/entity"
)

// DecisionDraft is a decision emitted by an execution unit, not yet written
// to the ledger.
type DecisionDraft struct {
	DecisionType    string                 `json:"decision_type"`
	TargetId        *string                `json:"target_id,omitempty"`
	DecisionValue   map[string]interface{} `json:"decision_value"`
	Reasoning       *string                `json:"reasoning,omitempty"`
	ConfidenceScore *float64               `json:"confidence_score,omitempty"`
}

// Result is the terminal payload of one dispatched execution.
type Result struct {
	Output    map[string]interface{} `json:"output"`
	Summary   map[string]interface{} `json:"summary,omitempty"`
	Decisions []DecisionDraft        `json:"decisions,omitempty"`
	Processed int                    `json:"processed"`
	Fallback  bool                   `json:"fallback,omitempty"`
}

// Executor hands a claimed session to its execution unit and waits for the
// terminal payload. An error return always fails the session; there is no
// retry at this layer.
type Executor interface {
	Execute(ctx context.Context, session *entity.AgentSession) (*Result, error)
}
