package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AgentSession struct {
	Id             uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InstitutionId  uuid.UUID                   `gorm:"type:uuid;not null;index"` // Tenant scope for data isolation
	AgentType      string                      `gorm:"type:varchar(32);not null;index"`
	Status         string                      `gorm:"type:varchar(16);not null;index;default:'pending'"`
	IsChatSession  bool                        `gorm:"not null;default:false"`
	InputContext   datatypes.JSONMap           `gorm:"type:jsonb"`
	TargetType     *string                     `gorm:"type:varchar(32)"`
	TargetIds      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	TotalItems     int                         `gorm:"not null;default:0"`
	ProcessedItems int                         `gorm:"not null;default:0"`
	OutputResult   datatypes.JSONMap           `gorm:"type:jsonb"`
	OutputSummary  datatypes.JSONMap           `gorm:"type:jsonb"`
	ErrorMessage   *string                     `gorm:"type:text"`
	InitiatedBy    uuid.UUID                   `gorm:"type:uuid;not null"`
	Version        int                         `gorm:"not null;default:0"` // Optimistic lock for chat continuation
	CreatedAt      time.Time                   `gorm:"autoCreateTime;index"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	DeadlineAt     *time.Time `gorm:"index"` // Sweep target while running
}

func (AgentSession) TableName() string {
	return "agent_sessions"
}
