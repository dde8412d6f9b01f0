package contract

import (
	"context"

	"admissions-be/internal/entity"
	"admissions-be/internal/repository/specification"
)

// AgentDecisionRepository is append-only: there is no Update or Delete.
// A corrected judgment is a new row with a later created_at.
type AgentDecisionRepository interface {
	Create(ctx context.Context, decision *entity.AgentDecision) error
	CreateBulk(ctx context.Context, decisions []*entity.AgentDecision) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AgentDecision, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
