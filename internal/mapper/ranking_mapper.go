package mapper

import (
	"admissions-be/internal/entity"
	"admissions-be/internal/model"
)

type RankingMapper struct{}

func NewRankingMapper() *RankingMapper {
	return &RankingMapper{}
}

func (m *RankingMapper) RankedChoiceToEntity(r *model.ApplicationChoiceRanking) *entity.RankedChoice {
	if r == nil {
		return nil
	}

	return &entity.RankedChoice{
		ApplicationId: r.ApplicationId,
		ChoiceId:      r.ChoiceId,
		CourseId:      r.CourseId,
		InstitutionId: r.InstitutionId,
		ApsScore:      r.ApsScore,
		RankPosition:  r.RankPosition,
	}
}

func (m *RankingMapper) IntakeSettingToEntity(s *model.CourseIntakeSetting) *entity.CourseIntakeSetting {
	if s == nil {
		return nil
	}

	return &entity.CourseIntakeSetting{
		CourseId:      s.CourseId,
		InstitutionId: s.InstitutionId,
		IntakeLimit:   s.IntakeLimit,
		AutoAccept:    s.AutoAccept,
		Conditional:   s.Conditional,
		Waitlist:      s.Waitlist,
	}
}

func (m *RankingMapper) MemberToEntity(mem *model.InstitutionMember) *entity.InstitutionMember {
	if mem == nil {
		return nil
	}

	return &entity.InstitutionMember{
		Id:            mem.Id,
		UserId:        mem.UserId,
		InstitutionId: mem.InstitutionId,
		Role:          mem.Role,
		CreatedAt:     mem.CreatedAt,
	}
}
