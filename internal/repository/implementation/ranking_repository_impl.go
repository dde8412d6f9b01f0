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

type RankingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RankingMapper
}

func NewRankingRepository(db *gorm.DB) contract.RankingRepository {
	return &RankingRepositoryImpl{
		db:     db,
		mapper: mapper.NewRankingMapper(),
	}
}

// Refresh rebuilds the per-course slice of the ranking view. The view scores
// choices by APS and assigns dense rank positions; insertion order of equal
// scores is the tie-break the snapshot materialization happens to use.
func (r *RankingRepositoryImpl) Refresh(ctx context.Context, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM application_choice_rankings WHERE course_id = ?", courseId,
		).Error; err != nil {
			return err
		}
		return tx.Exec(`
			INSERT INTO application_choice_rankings
				(application_id, choice_id, course_id, institution_id, aps_score, rank_position)
			SELECT ac.application_id, ac.id, ac.course_id, ac.institution_id, ac.aps_score,
				ROW_NUMBER() OVER (ORDER BY ac.aps_score DESC, ac.created_at ASC)
			FROM application_choices ac
			WHERE ac.course_id = ?`, courseId,
		).Error
	})
}

func (r *RankingRepositoryImpl) FindByCourse(ctx context.Context, courseId uuid.UUID) ([]*entity.RankedChoice, error) {
	var models []*model.ApplicationChoiceRanking
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseId).
		Order("rank_position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	rows := make([]*entity.RankedChoice, len(models))
	for i, m := range models {
		rows[i] = r.mapper.RankedChoiceToEntity(m)
	}
	return rows, nil
}

func (r *RankingRepositoryImpl) FindIntakeSetting(ctx context.Context, courseId uuid.UUID) (*entity.CourseIntakeSetting, error) {
	var m model.CourseIntakeSetting
	err := r.db.WithContext(ctx).Where("course_id = ?", courseId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.IntakeSettingToEntity(&m), nil
}
