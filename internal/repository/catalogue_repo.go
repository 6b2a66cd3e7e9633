package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// CatalogueRepository reads canonical activity content and stores newly authored activities.
type CatalogueRepository interface {
	GetActivity(ctx context.Context, id uint) (models.Activity, bool, error)
	GetActivityWithQuestions(ctx context.Context, id uint) (models.Activity, bool, error)
	GetQuestion(ctx context.Context, id uint) (models.Question, bool, error)
	GetCorrectAnswers(ctx context.Context, questionIDs []uint) ([]models.Answer, error)
	GetOrderingCanonical(ctx context.Context, activityID uint) (models.OrderingActivity, bool, error)
	QuestionIDsForActivity(ctx context.Context, activityID uint) ([]uint, error)
	CreateActivity(ctx context.Context, activity *models.Activity, ordering *models.OrderingActivity) error
}

type catalogueRepository struct {
	db *gorm.DB
}

// NewCatalogueRepository constructs the catalogue repository.
func NewCatalogueRepository(db *gorm.DB) CatalogueRepository {
	return &catalogueRepository{db: db}
}

func (r *catalogueRepository) GetActivity(ctx context.Context, id uint) (models.Activity, bool, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Activity{}, false, nil
		}
		return models.Activity{}, false, err
	}

	return activity, true, nil
}

func (r *catalogueRepository) GetActivityWithQuestions(ctx context.Context, id uint) (models.Activity, bool, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC").Order("id ASC")
		}).
		Preload("Questions.Answers", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id ASC")
		}).
		First(&activity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Activity{}, false, nil
		}
		return models.Activity{}, false, err
	}

	return activity, true, nil
}

func (r *catalogueRepository) GetQuestion(ctx context.Context, id uint) (models.Question, bool, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).Preload("Activity").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Question{}, false, nil
		}
		return models.Question{}, false, err
	}

	return question, true, nil
}

// GetCorrectAnswers fetches, in one query, every correct answer of the given questions.
func (r *catalogueRepository) GetCorrectAnswers(ctx context.Context, questionIDs []uint) ([]models.Answer, error) {
	if len(questionIDs) == 0 {
		return []models.Answer{}, nil
	}

	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Where("is_correct = ?", true).
		Find(&answers).Error
	if err != nil {
		return nil, err
	}

	return answers, nil
}

func (r *catalogueRepository) GetOrderingCanonical(ctx context.Context, activityID uint) (models.OrderingActivity, bool, error) {
	var ordering models.OrderingActivity
	if err := r.db.WithContext(ctx).Where("activity_id = ?", activityID).First(&ordering).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.OrderingActivity{}, false, nil
		}
		return models.OrderingActivity{}, false, err
	}

	return ordering, true, nil
}

func (r *catalogueRepository) QuestionIDsForActivity(ctx context.Context, activityID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("activity_id = ?", activityID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// CreateActivity stores the activity with its questions and answers, plus the canonical
// sequence when ordering is non-nil.
func (r *catalogueRepository) CreateActivity(ctx context.Context, activity *models.Activity, ordering *models.OrderingActivity) error {
	visible := activity.Visible
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		// zero values are replaced by column defaults on insert
		if !visible {
			if err := tx.Model(activity).Update("visible", false).Error; err != nil {
				return err
			}
		}
		if ordering == nil {
			return nil
		}
		ordering.ActivityID = activity.ID
		return tx.Create(ordering).Error
	})
}
