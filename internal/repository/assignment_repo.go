package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// ErrDuplicateAssignment indicates the (student, activity) pair already has a record.
var ErrDuplicateAssignment = errors.New("assignment already exists for student and activity")

// ErrStaleAssignment indicates the record changed since it was read.
var ErrStaleAssignment = errors.New("assignment was modified concurrently")

// AssignmentOrder selects how student queries are sorted.
type AssignmentOrder int

const (
	// OrderByRecentActivity sorts by last update, newest first.
	OrderByRecentActivity AssignmentOrder = iota
	// OrderByCorrection sorts by correction time, newest first.
	OrderByCorrection
)

// AssignmentQuery narrows per-student queries.
type AssignmentQuery struct {
	StudentID     uint
	CorrectedOnly bool
	Order         AssignmentOrder
}

// BondQuery narrows queries scoped by professor-student bonds.
type BondQuery struct {
	ProfessorID uint
	Corrected   *bool
}

// AssignmentRepository persists one Assignment per (student, activity) pair.
type AssignmentRepository interface {
	Get(ctx context.Context, studentID, activityID uint) (models.Assignment, bool, error)
	Exists(ctx context.Context, studentID, activityID uint) (bool, error)
	Add(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	QueryByStudent(ctx context.Context, query AssignmentQuery) ([]models.Assignment, error)
	QueryByProfessorBond(ctx context.Context, query BondQuery) ([]models.Assignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Get(ctx context.Context, studentID, activityID uint) (models.Assignment, bool, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Activity").
		Where("student_id = ? AND activity_id = ?", studentID, activityID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, false, nil
		}
		return models.Assignment{}, false, err
	}

	return assignment, true, nil
}

func (r *assignmentRepository) Exists(ctx context.Context, studentID, activityID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("student_id = ? AND activity_id = ?", studentID, activityID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *assignmentRepository) Add(ctx context.Context, assignment *models.Assignment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAssignment
		}
		return err
	}

	return nil
}

// Update writes the grading fields only if nobody else wrote the row since it was read.
func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND version = ?", assignment.ID, assignment.Version).
		Updates(map[string]interface{}{
			"status":       assignment.Status,
			"score":        assignment.Score,
			"comment":      assignment.Comment,
			"corrected":    assignment.Corrected,
			"corrected_at": assignment.CorrectedAt,
			"version":      assignment.Version + 1,
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleAssignment
	}

	assignment.Version++
	assignment.UpdatedAt = now
	return nil
}

func (r *assignmentRepository) QueryByStudent(ctx context.Context, query AssignmentQuery) ([]models.Assignment, error) {
	tx := r.db.WithContext(ctx).
		Preload("Activity").
		Where("student_id = ?", query.StudentID)

	if query.CorrectedOnly {
		tx = tx.Where("corrected = ?", true)
	}

	switch query.Order {
	case OrderByCorrection:
		tx = tx.Order("corrected_at DESC").Order("id DESC")
	default:
		tx = tx.Order("updated_at DESC").Order("id DESC")
	}

	var assignments []models.Assignment
	if err := tx.Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) QueryByProfessorBond(ctx context.Context, query BondQuery) ([]models.Assignment, error) {
	bonded := r.db.WithContext(ctx).
		Model(&models.ProfessorStudentBond{}).
		Select("student_id").
		Where("professor_id = ? AND active = ?", query.ProfessorID, true)

	tx := r.db.WithContext(ctx).
		Preload("Activity").
		Preload("Student").
		Where("student_id IN (?)", bonded)

	if query.Corrected != nil {
		tx = tx.Where("corrected = ?", *query.Corrected)
	}

	var assignments []models.Assignment
	if err := tx.Order("updated_at DESC").Order("id DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}
