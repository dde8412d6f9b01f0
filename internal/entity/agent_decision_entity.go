package entity

import (
	"time"

	"github.com/google/uuid"
)

// AgentDecision is an append-only judgment emitted while a session executes.
// Corrections are new rows with a later CreatedAt, never updates.
type AgentDecision struct {
	Id              uuid.UUID
	SessionId       uuid.UUID
	DecisionType    string
	TargetId        *string
	DecisionValue   map[string]interface{}
	Reasoning       *string
	ConfidenceScore *float64
	CreatedAt       time.Time
}
