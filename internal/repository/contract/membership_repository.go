package contract

import (
	"context"

	"admissions-be/internal/entity"

	"github.com/google/uuid"
)

type MembershipRepository interface {
	FindMember(ctx context.Context, userId, institutionId uuid.UUID) (*entity.InstitutionMember, error)
	FindAdmins(ctx context.Context, institutionId uuid.UUID) ([]*entity.InstitutionMember, error)
}
