package entity

import (
	"github.com/google/uuid"
)

// RankedChoice is one row of the application-choice ranking snapshot,
// ordered by RankPosition by the snapshot itself.
type RankedChoice struct {
	ApplicationId uuid.UUID
	ChoiceId      uuid.UUID
	CourseId      uuid.UUID
	InstitutionId uuid.UUID
	ApsScore      int
	RankPosition  int
}

// CourseIntakeSetting carries the per-course intake configuration used to
// derive ranking cutoffs. Threshold fractions are nil when the course has
// no override and global defaults apply.
type CourseIntakeSetting struct {
	CourseId      uuid.UUID
	InstitutionId uuid.UUID
	IntakeLimit   *int
	AutoAccept    *float64
	Conditional   *float64
	Waitlist      *float64
}
