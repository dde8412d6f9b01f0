package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID scopes decision queries to one session.
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByInstitutionID enforces tenant isolation.
type ByInstitutionID struct {
	InstitutionID uuid.UUID
}

func (s ByInstitutionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("institution_id = ?", s.InstitutionID)
}

// ByStatus filters sessions by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByAgentType filters sessions by agent type.
type ByAgentType struct {
	AgentType string
}

func (s ByAgentType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("agent_type = ?", s.AgentType)
}

// ByCourseID scopes ranking snapshot reads to one course.
type ByCourseID struct {
	CourseID uuid.UUID
}

func (s ByCourseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_id = ?", s.CourseID)
}
