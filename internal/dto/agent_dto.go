package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	SessionId  *uuid.UUID             `json:"session_id,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Query      string                 `json:"query,omitempty"`
	TargetType *string                `json:"target_type,omitempty"`
	TargetIds  []string               `json:"target_ids,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

type CreateSessionResponse struct {
	SessionId    uuid.UUID `json:"session_id"`
	Status       string    `json:"status"`
	IsNewSession bool      `json:"is_new_session"`
}

type SessionSummaryResponse struct {
	SessionId      uuid.UUID  `json:"session_id"`
	AgentType      string     `json:"agent_type"`
	Status         string     `json:"status"`
	IsChatSession  bool       `json:"is_chat_session"`
	TotalItems     int        `json:"total_items"`
	ProcessedItems int        `json:"processed_items"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type TranscriptMessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Ephemeral bool      `json:"ephemeral,omitempty"`
}

type DecisionDTO struct {
	Id              uuid.UUID              `json:"id"`
	DecisionType    string                 `json:"decision_type"`
	TargetId        *string                `json:"target_id,omitempty"`
	DecisionValue   map[string]interface{} `json:"decision_value,omitempty"`
	Reasoning       *string                `json:"reasoning,omitempty"`
	ConfidenceScore *float64               `json:"confidence_score,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

type GetSessionResponse struct {
	Session   SessionSummaryResponse `json:"session"`
	Messages  []TranscriptMessageDTO `json:"messages"`
	Decisions []DecisionDTO          `json:"decisions"`
	Output    map[string]interface{} `json:"output,omitempty"`
	Summary   map[string]interface{} `json:"summary,omitempty"`
}

type GetMessagesResponse struct {
	Messages      []TranscriptMessageDTO `json:"messages"`
	SessionStatus string                 `json:"session_status"`
	HasMore       bool                   `json:"has_more"`
}

type ListSessionsResponse struct {
	Sessions []SessionSummaryResponse `json:"sessions"`
}
