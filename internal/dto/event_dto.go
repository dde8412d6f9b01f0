package dto

import (
	"github.com/google/uuid"
)

// SessionFinishedMessage is the internal bus payload emitted once per
// terminal transition (completed or failed).
type SessionFinishedMessage struct {
	SessionId     uuid.UUID `json:"session_id"`
	InstitutionId uuid.UUID `json:"institution_id"`
	AgentType     string    `json:"agent_type"`
	Status        string    `json:"status"`
	InitiatedBy   uuid.UUID `json:"initiated_by"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
}

// SessionUpdatePayload is what websocket subscribers receive.
type SessionUpdatePayload struct {
	SessionId    uuid.UUID `json:"session_id"`
	AgentType    string    `json:"agent_type"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}
