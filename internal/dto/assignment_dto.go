package dto

import (
	"time"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// AssignActivityRequest describes the payload a professor sends to assign work.
type AssignActivityRequest struct {
	StudentID  uint `json:"student_id" validate:"required"`
	ActivityID uint `json:"activity_id" validate:"required"`
}

// EvaluateActivityRequest describes a manual professor evaluation.
type EvaluateActivityRequest struct {
	StudentID  uint   `json:"student_id" validate:"required"`
	ActivityID uint   `json:"activity_id" validate:"required"`
	Score      *int   `json:"score" validate:"required,min=0,max=100"`
	Comment    string `json:"comment" validate:"max=4000"`
}

// AssignmentResponse is the serialized representation of an assignment record.
// Score is null until the assignment is corrected.
type AssignmentResponse struct {
	ID          uint            `json:"id"`
	StudentID   uint            `json:"student_id"`
	ActivityID  uint            `json:"activity_id"`
	Status      string          `json:"status"`
	Score       *int            `json:"score"`
	Comment     string          `json:"comment"`
	Corrected   bool            `json:"corrected"`
	CorrectedAt *time.Time      `json:"corrected_at"`
	Modality    models.Modality `json:"modality,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		ActivityID:  model.ActivityID,
		Status:      string(model.Status),
		Corrected:   model.Corrected,
		CorrectedAt: model.CorrectedAt,
		Modality:    model.Activity.Modality,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.Corrected {
		score := model.Score
		response.Score = &score
		response.Comment = model.Comment
	}
	return response
}

// PendingReviewResponse is one uncorrected assignment visible to a professor.
type PendingReviewResponse struct {
	AssignmentID uint            `json:"assignment_id"`
	StudentID    uint            `json:"student_id"`
	StudentName  string          `json:"student_name"`
	ActivityID   uint            `json:"activity_id"`
	ActivityName string          `json:"activity_name"`
	Modality     models.Modality `json:"modality"`
	Status       string          `json:"status"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewPendingReviewResponse converts a model with preloaded student and activity.
func NewPendingReviewResponse(model models.Assignment) PendingReviewResponse {
	return PendingReviewResponse{
		AssignmentID: model.ID,
		StudentID:    model.StudentID,
		StudentName:  model.Student.Name,
		ActivityID:   model.ActivityID,
		ActivityName: model.Activity.Name,
		Modality:     model.Activity.Modality,
		Status:       string(model.Status),
		UpdatedAt:    model.UpdatedAt,
	}
}

// StudentActivityResponse lists an assignment together with its activity.
type StudentActivityResponse struct {
	AssignmentID uint            `json:"assignment_id"`
	ActivityID   uint            `json:"activity_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Modality     models.Modality `json:"modality"`
	Status       string          `json:"status"`
	Corrected    bool            `json:"corrected"`
	Score        *int            `json:"score"`
	CorrectedAt  *time.Time      `json:"corrected_at"`
}

// NewStudentActivityResponse converts a model with a preloaded activity.
func NewStudentActivityResponse(model models.Assignment) StudentActivityResponse {
	response := StudentActivityResponse{
		AssignmentID: model.ID,
		ActivityID:   model.ActivityID,
		Name:         model.Activity.Name,
		Description:  model.Activity.Description,
		Modality:     model.Activity.Modality,
		Status:       string(model.Status),
		Corrected:    model.Corrected,
		CorrectedAt:  model.CorrectedAt,
	}
	if model.Corrected {
		score := model.Score
		response.Score = &score
	}
	return response
}

// CompletedActivityResponse is a corrected assignment.
type CompletedActivityResponse struct {
	AssignmentID uint            `json:"assignment_id"`
	ActivityID   uint            `json:"activity_id"`
	Name         string          `json:"name"`
	Modality     models.Modality `json:"modality"`
	Score        int             `json:"score"`
	Comment      string          `json:"comment"`
	CorrectedAt  time.Time       `json:"corrected_at"`
}

// NewCompletedActivityResponse converts a corrected model.
func NewCompletedActivityResponse(model models.Assignment) CompletedActivityResponse {
	response := CompletedActivityResponse{
		AssignmentID: model.ID,
		ActivityID:   model.ActivityID,
		Name:         model.Activity.Name,
		Modality:     model.Activity.Modality,
		Score:        model.Score,
		Comment:      model.Comment,
	}
	if model.CorrectedAt != nil {
		response.CorrectedAt = *model.CorrectedAt
	}
	return response
}
