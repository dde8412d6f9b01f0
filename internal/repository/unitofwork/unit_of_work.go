package unitofwork

import (
	"context"

	"admissions-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AgentSessionRepository() contract.AgentSessionRepository
	AgentDecisionRepository() contract.AgentDecisionRepository
	RankingRepository() contract.RankingRepository
	MembershipRepository() contract.MembershipRepository
}
