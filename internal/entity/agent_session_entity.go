package entity

import (
	"time"

	"github.com/google/uuid"
)

type AgentSession struct {
	Id             uuid.UUID
	InstitutionId  uuid.UUID
	AgentType      string
	Status         string
	IsChatSession  bool
	InputContext   map[string]interface{}
	TargetType     *string
	TargetIds      []string
	TotalItems     int
	ProcessedItems int
	OutputResult   map[string]interface{}
	OutputSummary  map[string]interface{}
	ErrorMessage   *string
	InitiatedBy    uuid.UUID
	Version        int
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	DeadlineAt     *time.Time
}
