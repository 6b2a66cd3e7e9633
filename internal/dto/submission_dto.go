package dto

import (
	"time"

	"github.com/noah-isme/tempo-go-api/internal/grading"
	"github.com/noah-isme/tempo-go-api/internal/models"
)

// ChoiceSubmissionRequest carries the selected answers for a choice-based activity.
type ChoiceSubmissionRequest struct {
	ActivityID uint                `json:"activity_id" validate:"required"`
	Selections []grading.Selection `json:"selections" validate:"omitempty,dive"`
}

// OrderingSubmissionRequest carries an ordered token list, or a delimited string in Raw.
type OrderingSubmissionRequest struct {
	ActivityID uint     `json:"activity_id" validate:"required"`
	Sequence   []string `json:"sequence" validate:"omitempty,max=500"`
	Raw        string   `json:"raw" validate:"max=10000"`
}

// FreeTextSubmissionRequest carries a written response to a free-text question.
type FreeTextSubmissionRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Response   string `json:"response" validate:"required,max=20000"`
}

// GradingResponse reports an automatically graded submission.
type GradingResponse struct {
	Assignment AssignmentResponse   `json:"assignment"`
	Score      int                  `json:"score"`
	Correct    int                  `json:"correct"`
	Total      int                  `json:"total"`
	Items      []grading.ItemResult `json:"items"`
}

// NewGradingResponse combines the stored assignment with the grading detail.
func NewGradingResponse(assignment models.Assignment, result grading.Result) GradingResponse {
	items := result.Items
	if items == nil {
		items = []grading.ItemResult{}
	}
	return GradingResponse{
		Assignment: NewAssignmentResponse(assignment),
		Score:      result.Score,
		Correct:    result.Correct,
		Total:      result.Total,
		Items:      items,
	}
}

// FreeTextSubmissionResponse acknowledges a stored free-text response.
type FreeTextSubmissionResponse struct {
	SubmissionID uint               `json:"submission_id"`
	QuestionID   uint               `json:"question_id"`
	SubmittedAt  time.Time          `json:"submitted_at"`
	Assignment   AssignmentResponse `json:"assignment"`
	Created      bool               `json:"assignment_created"`
}

// FreeTextResponse is a stored written answer shown to the reviewing professor.
type FreeTextResponse struct {
	ID          uint      `json:"id"`
	QuestionID  uint      `json:"question_id"`
	Response    string    `json:"response"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewFreeTextResponseSlice converts stored submissions into DTOs.
func NewFreeTextResponseSlice(items []models.FreeTextSubmission) []FreeTextResponse {
	responses := make([]FreeTextResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, FreeTextResponse{
			ID:          item.ID,
			QuestionID:  item.QuestionID,
			Response:    item.Response,
			SubmittedAt: item.SubmittedAt,
		})
	}
	return responses
}
