package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// FreeTextRepository persists free-text responses.
type FreeTextRepository interface {
	Submit(ctx context.Context, submission *models.FreeTextSubmission, placeholder *models.Assignment) (bool, error)
	ListForAssignment(ctx context.Context, studentID, activityID uint) ([]models.FreeTextSubmission, error)
}

type freeTextRepository struct {
	db *gorm.DB
}

// NewFreeTextRepository constructs the free-text repository.
func NewFreeTextRepository(db *gorm.DB) FreeTextRepository {
	return &freeTextRepository{db: db}
}

// Submit stores the response and inserts placeholder unless the pair already has an
// assignment. Both writes share one transaction. The boolean reports whether the
// placeholder was inserted.
func (r *freeTextRepository) Submit(ctx context.Context, submission *models.FreeTextSubmission, placeholder *models.Assignment) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}

		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}, {Name: "activity_id"}},
				DoNothing: true,
			}).
			Create(placeholder)
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (r *freeTextRepository) ListForAssignment(ctx context.Context, studentID, activityID uint) ([]models.FreeTextSubmission, error) {
	var submissions []models.FreeTextSubmission
	err := r.db.WithContext(ctx).
		Joins("JOIN questions ON questions.id = free_text_submissions.question_id").
		Where("free_text_submissions.student_id = ?", studentID).
		Where("questions.activity_id = ?", activityID).
		Order("free_text_submissions.submitted_at DESC").
		Order("free_text_submissions.id DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}
