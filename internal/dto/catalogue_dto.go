package dto

import (
	"time"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// AnswerInput is one option of an authored question.
type AnswerInput struct {
	Text      string `json:"text" validate:"required,max=512"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionInput is one authored question.
type QuestionInput struct {
	Title   string        `json:"title" validate:"required,max=512"`
	Answers []AnswerInput `json:"answers" validate:"omitempty,dive"`
}

// ActivityCreateRequest describes a new catalogue activity.
type ActivityCreateRequest struct {
	Name         string          `json:"name" validate:"required,min=3,max=255"`
	Description  string          `json:"description" validate:"max=5000"`
	Modality     string          `json:"modality" validate:"required,oneof=choice_based ordering free_text"`
	Difficulty   string          `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	ScheduledAt  string          `json:"scheduled_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Visible      *bool           `json:"visible"`
	InstrumentID uint            `json:"instrument_id" validate:"required"`
	Questions    []QuestionInput `json:"questions" validate:"omitempty,dive"`
	Sequence     []string        `json:"sequence" validate:"omitempty,dive,required"`
}

// ActivityResponse is the professor-facing representation of an activity.
type ActivityResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Modality      models.Modality `json:"modality"`
	Difficulty    string          `json:"difficulty"`
	ScheduledAt   *time.Time      `json:"scheduled_at"`
	Visible       bool            `json:"visible"`
	InstrumentID  uint            `json:"instrument_id"`
	ProfessorID   *uint           `json:"professor_id"`
	QuestionCount int             `json:"question_count"`
	SequenceSize  int             `json:"sequence_size"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(model models.Activity, sequenceSize int) ActivityResponse {
	return ActivityResponse{
		ID:            model.ID,
		Name:          model.Name,
		Description:   model.Description,
		Modality:      model.Modality,
		Difficulty:    model.Difficulty,
		ScheduledAt:   model.ScheduledAt,
		Visible:       model.Visible,
		InstrumentID:  model.InstrumentID,
		ProfessorID:   model.ProfessorID,
		QuestionCount: len(model.Questions),
		SequenceSize:  sequenceSize,
		CreatedAt:     model.CreatedAt,
	}
}

// StudentAnswerView is an answer option without its correctness flag.
type StudentAnswerView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// StudentQuestionView is a question as shown to a student.
type StudentQuestionView struct {
	ID      uint                `json:"id"`
	Title   string              `json:"title"`
	Answers []StudentAnswerView `json:"answers"`
}

// StudentActivityView is the student-facing read model of an activity.
type StudentActivityView struct {
	ID          uint                  `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Modality    models.Modality       `json:"modality"`
	Difficulty  string                `json:"difficulty"`
	ScheduledAt *time.Time            `json:"scheduled_at"`
	Questions   []StudentQuestionView `json:"questions"`
}

// OrderingPresentationResponse is a freshly shuffled view of an ordering activity.
type OrderingPresentationResponse struct {
	ActivityID uint     `json:"activity_id"`
	Tokens     []string `json:"tokens"`
}
