package implementation

import (
	"context"

	"admissions-be/internal/entity"
	"admissions-be/internal/mapper"
	"admissions-be/internal/model"
	"admissions-be/internal/repository/contract"
	"admissions-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AgentDecisionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AgentMapper
}

func NewAgentDecisionRepository(db *gorm.DB) contract.AgentDecisionRepository {
	return &AgentDecisionRepositoryImpl{
		db:     db,
		mapper: mapper.NewAgentMapper(),
	}
}

func (r *AgentDecisionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AgentDecisionRepositoryImpl) Create(ctx context.Context, decision *entity.AgentDecision) error {
	m := r.mapper.DecisionToModel(decision)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*decision = *r.mapper.DecisionToEntity(m)
	return nil
}

func (r *AgentDecisionRepositoryImpl) CreateBulk(ctx context.Context, decisions []*entity.AgentDecision) error {
	if len(decisions) == 0 {
		return nil
	}
	models := make([]*model.AgentDecision, len(decisions))
	for i, d := range decisions {
		models[i] = r.mapper.DecisionToModel(d)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*decisions[i] = *r.mapper.DecisionToEntity(m)
	}
	return nil
}

func (r *AgentDecisionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AgentDecision, error) {
	var models []*model.AgentDecision
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.DecisionsToEntities(models), nil
}

func (r *AgentDecisionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AgentDecision{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
