package mapper

import (
	"admissions-be/internal/entity"
	"admissions-be/internal/model"

	"gorm.io/datatypes"
)

type AgentMapper struct{}

func NewAgentMapper() *AgentMapper {
	return &AgentMapper{}
}

// Session Mappers

func (m *AgentMapper) SessionToEntity(s *model.AgentSession) *entity.AgentSession {
	if s == nil {
		return nil
	}

	return &entity.AgentSession{
		Id:             s.Id,
		InstitutionId:  s.InstitutionId,
		AgentType:      s.AgentType,
		Status:         s.Status,
		IsChatSession:  s.IsChatSession,
		InputContext:   map[string]interface{}(s.InputContext),
		TargetType:     s.TargetType,
		TargetIds:      []string(s.TargetIds),
		TotalItems:     s.TotalItems,
		ProcessedItems: s.ProcessedItems,
		OutputResult:   map[string]interface{}(s.OutputResult),
		OutputSummary:  map[string]interface{}(s.OutputSummary),
		ErrorMessage:   s.ErrorMessage,
		InitiatedBy:    s.InitiatedBy,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
		DeadlineAt:     s.DeadlineAt,
	}
}

func (m *AgentMapper) SessionToModel(s *entity.AgentSession) *model.AgentSession {
	if s == nil {
		return nil
	}

	return &model.AgentSession{
		Id:             s.Id,
		InstitutionId:  s.InstitutionId,
		AgentType:      s.AgentType,
		Status:         s.Status,
		IsChatSession:  s.IsChatSession,
		InputContext:   datatypes.JSONMap(s.InputContext),
		TargetType:     s.TargetType,
		TargetIds:      datatypes.JSONSlice[string](s.TargetIds),
		TotalItems:     s.TotalItems,
		ProcessedItems: s.ProcessedItems,
		OutputResult:   datatypes.JSONMap(s.OutputResult),
		OutputSummary:  datatypes.JSONMap(s.OutputSummary),
		ErrorMessage:   s.ErrorMessage,
		InitiatedBy:    s.InitiatedBy,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
		DeadlineAt:     s.DeadlineAt,
	}
}

// Decision Mappers

func (m *AgentMapper) DecisionToEntity(d *model.AgentDecision) *entity.AgentDecision {
	if d == nil {
		return nil
	}

	return &entity.AgentDecision{
		Id:              d.Id,
		SessionId:       d.SessionId,
		DecisionType:    d.DecisionType,
		TargetId:        d.TargetId,
		DecisionValue:   map[string]interface{}(d.DecisionValue),
		Reasoning:       d.Reasoning,
		ConfidenceScore: d.ConfidenceScore,
		CreatedAt:       d.CreatedAt,
	}
}

func (m *AgentMapper) DecisionToModel(d *entity.AgentDecision) *model.AgentDecision {
	if d == nil {
		return nil
	}

	return &model.AgentDecision{
		Id:              d.Id,
		SessionId:       d.SessionId,
		DecisionType:    d.DecisionType,
		TargetId:        d.TargetId,
		DecisionValue:   datatypes.JSONMap(d.DecisionValue),
		Reasoning:       d.Reasoning,
		ConfidenceScore: d.ConfidenceScore,
		CreatedAt:       d.CreatedAt,
	}
}

func (m *AgentMapper) DecisionsToEntities(models []*model.AgentDecision) []*entity.AgentDecision {
	entities := make([]*entity.AgentDecision, len(models))
	for i, d := range models {
		entities[i] = m.DecisionToEntity(d)
	}
	return entities
}
