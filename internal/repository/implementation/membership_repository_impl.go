package implementation

import (
	"context"
	"errors"

	"admissions-be/internal/entity"
	"admissions-be/internal/mapper"
	"admissions-be/internal/model"
	"admissions-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RankingMapper
}

func NewMembershipRepository(db *gorm.DB) contract.MembershipRepository {
	return &MembershipRepositoryImpl{
		db:     db,
		mapper: mapper.NewRankingMapper(),
	}
}

func (r *MembershipRepositoryImpl) FindMember(ctx context.Context, userId, institutionId uuid.UUID) (*entity.InstitutionMember, error) {
	var m model.InstitutionMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND institution_id = ?", userId, institutionId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MemberToEntity(&m), nil
}

func (r *MembershipRepositoryImpl) FindAdmins(ctx context.Context, institutionId uuid.UUID) ([]*entity.InstitutionMember, error) {
	var models []*model.InstitutionMember
	err := r.db.WithContext(ctx).
		Where("institution_id = ? AND role = ?", institutionId, "admin").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	members := make([]*entity.InstitutionMember, len(models))
	for i, m := range models {
		members[i] = r.mapper.MemberToEntity(m)
	}
	return members, nil
}
