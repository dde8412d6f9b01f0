package implementation

import (
	"context"
	"errors"
	"time"

	"admissions-be/internal/entity"
	"admissions-be/internal/mapper"
	"admissions-be/internal/model"
	"admissions-be/internal/repository/contract"
	"admissions-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AgentSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AgentMapper
}

func NewAgentSessionRepository(db *gorm.DB) contract.AgentSessionRepository {
	return &AgentSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewAgentMapper(),
	}
}

func (r *AgentSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AgentSessionRepositoryImpl) Create(ctx context.Context, session *entity.AgentSession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *AgentSessionRepositoryImpl) UpdateWithVersion(ctx context.Context, session *entity.AgentSession, expectedVersion int) (bool, error) {
	m := r.mapper.SessionToModel(session)

	res := r.db.WithContext(ctx).
		Model(&model.AgentSession{}).
		Where("id = ? AND version = ?", m.Id, expectedVersion).
		Updates(map[string]interface{}{
			"status":          m.Status,
			"input_context":   m.InputContext,
			"target_type":     m.TargetType,
			"target_ids":      m.TargetIds,
			"total_items":     m.TotalItems,
			"processed_items": m.ProcessedItems,
			"output_result":   m.OutputResult,
			"output_summary":  m.OutputSummary,
			"error_message":   m.ErrorMessage,
			"started_at":      m.StartedAt,
			"completed_at":    m.CompletedAt,
			"deadline_at":     m.DeadlineAt,
			"version":         expectedVersion + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	session.Version = expectedVersion + 1
	return true, nil
}

// ClaimPending uses the affected-row-count of a conditional update as the
// claim signal, so two runners can never both dispatch the same session.
func (r *AgentSessionRepositoryImpl) ClaimPending(ctx context.Context, id uuid.UUID, startedAt time.Time, deadlineAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.AgentSession{}).
		Where("id = ? AND status = ?", id, "pending").
		Updates(map[string]interface{}{
			"status":      "running",
			"started_at":  startedAt,
			"deadline_at": deadlineAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AgentSessionRepositoryImpl) CompleteRunning(ctx context.Context, id uuid.UUID, output, summary map[string]interface{}, processedItems int, completedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.AgentSession{}).
		Where("id = ? AND status = ?", id, "running").
		Updates(map[string]interface{}{
			"status":          "completed",
			"output_result":   datatypes.JSONMap(output),
			"output_summary":  datatypes.JSONMap(summary),
			"processed_items": processedItems,
			"completed_at":    completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AgentSessionRepositoryImpl) FailRunning(ctx context.Context, id uuid.UUID, errorMessage string, completedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.AgentSession{}).
		Where("id = ? AND status = ?", id, "running").
		Updates(map[string]interface{}{
			"status":        "failed",
			"error_message": errorMessage,
			"completed_at":  completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AgentSessionRepositoryImpl) FailExpired(ctx context.Context, now time.Time, errorMessage string) ([]uuid.UUID, error) {
	var expired []model.AgentSession
	err := r.db.WithContext(ctx).
		Select("id").
		Where("status = ? AND deadline_at IS NOT NULL AND deadline_at < ?", "running", now).
		Find(&expired).Error
	if err != nil {
		return nil, err
	}

	var swept []uuid.UUID
	for _, s := range expired {
		// Conditional per-row update: a session that completed between the
		// select and this write is left alone.
		ok, err := r.FailRunning(ctx, s.Id, errorMessage, now)
		if err != nil {
			return swept, err
		}
		if ok {
			swept = append(swept, s.Id)
		}
	}
	return swept, nil
}

func (r *AgentSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AgentSession, error) {
	var m model.AgentSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *AgentSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AgentSession, error) {
	var models []*model.AgentSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.AgentSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}

func (r *AgentSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AgentSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
