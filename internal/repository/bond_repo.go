package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// BondRepository reads professor-student visibility links.
type BondRepository interface {
	ListActive(ctx context.Context, professorID uint) ([]models.ProfessorStudentBond, error)
	IsActive(ctx context.Context, professorID, studentID uint) (bool, error)
}

type bondRepository struct {
	db *gorm.DB
}

// NewBondRepository constructs the bond repository.
func NewBondRepository(db *gorm.DB) BondRepository {
	return &bondRepository{db: db}
}

func (r *bondRepository) ListActive(ctx context.Context, professorID uint) ([]models.ProfessorStudentBond, error) {
	var bonds []models.ProfessorStudentBond
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("professor_id = ? AND active = ?", professorID, true).
		Order("student_id ASC").
		Order("instrument_id ASC").
		Find(&bonds).Error
	if err != nil {
		return nil, err
	}

	return bonds, nil
}

func (r *bondRepository) IsActive(ctx context.Context, professorID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProfessorStudentBond{}).
		Where("professor_id = ? AND student_id = ? AND active = ?", professorID, studentID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
