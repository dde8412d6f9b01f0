package contract

import (
	"context"

	"admissions-be/internal/entity"

	"github.com/google/uuid"
)

type RankingRepository interface {
	// Refresh rebuilds the ranking snapshot for a course. It must complete
	// strictly before FindByCourse in the same request.
	Refresh(ctx context.Context, courseId uuid.UUID) error

	// FindByCourse returns snapshot rows in rank_position ascending order,
	// trusting the order the materialization produced.
	FindByCourse(ctx context.Context, courseId uuid.UUID) ([]*entity.RankedChoice, error)

	FindIntakeSetting(ctx context.Context, courseId uuid.UUID) (*entity.CourseIntakeSetting, error)
}
