package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AgentDecision rows are insert-only. There is deliberately no UpdatedAt or
// DeletedAt: the ledger is the audit trail.
type AgentDecision struct {
	Id              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId       uuid.UUID         `gorm:"type:uuid;not null;index"`
	DecisionType    string            `gorm:"type:varchar(64);not null"`
	TargetId        *string           `gorm:"type:varchar(64)"`
	DecisionValue   datatypes.JSONMap `gorm:"type:jsonb"`
	Reasoning       *string           `gorm:"type:text"`
	ConfidenceScore *float64          `gorm:"type:numeric(3,2)"`
	CreatedAt       time.Time         `gorm:"autoCreateTime;index"` // Only ordering key for transcript replay
}

func (AgentDecision) TableName() string {
	return "agent_decisions"
}
