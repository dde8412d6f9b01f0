package model

import (
	"github.com/google/uuid"
)

// ApplicationChoiceRanking maps the materialized ranking snapshot. The view
// is ordered by rank_position when materialized; readers trust that order.
type ApplicationChoiceRanking struct {
	ApplicationId uuid.UUID `gorm:"type:uuid;column:application_id"`
	ChoiceId      uuid.UUID `gorm:"type:uuid;column:choice_id;primaryKey"`
	CourseId      uuid.UUID `gorm:"type:uuid;column:course_id;index"`
	InstitutionId uuid.UUID `gorm:"type:uuid;column:institution_id"`
	ApsScore      int       `gorm:"column:aps_score"`
	RankPosition  int       `gorm:"column:rank_position"`
}

func (ApplicationChoiceRanking) TableName() string {
	return "application_choice_rankings"
}

type CourseIntakeSetting struct {
	CourseId      uuid.UUID `gorm:"type:uuid;primaryKey"`
	InstitutionId uuid.UUID `gorm:"type:uuid;not null;index"`
	IntakeLimit   *int
	AutoAccept    *float64 `gorm:"type:numeric(4,2)"`
	Conditional   *float64 `gorm:"type:numeric(4,2)"`
	Waitlist      *float64 `gorm:"type:numeric(4,2)"`
}

func (CourseIntakeSetting) TableName() string {
	return "course_intake_settings"
}
