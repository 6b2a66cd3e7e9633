// Package grading scores submissions against canonical activity content.
//
// Each modality has exactly one Strategy. Strategies are pure: they never touch
// storage and never decide whether an assignment record may be created.
package grading

import (
	"errors"
	"fmt"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// ErrEmptySubmission indicates there was nothing to score.
var ErrEmptySubmission = errors.New("submission contains no items")

// ErrInvalidCanonical indicates the stored answer key cannot be used for scoring.
var ErrInvalidCanonical = errors.New("canonical content is empty")

// ErrUnsupportedModality indicates no strategy is registered for the modality.
var ErrUnsupportedModality = errors.New("unsupported activity modality")

// Selection is one (question, chosen answer) pair of a choice-based submission.
type Selection struct {
	QuestionID uint `json:"question_id"`
	AnswerID   uint `json:"answer_id"`
}

// Submission carries the student's input. Only the field matching the modality is read.
type Submission struct {
	Selections []Selection
	Sequence   []string
	Text       string
}

// AnswerKey carries the canonical content. Only the field matching the modality is read.
type AnswerKey struct {
	CorrectAnswers []models.Answer
	Canonical      []string
}

// ItemResult reports the outcome of a single submitted item.
type ItemResult struct {
	Index      int    `json:"index"`
	QuestionID uint   `json:"question_id,omitempty"`
	AnswerID   uint   `json:"answer_id,omitempty"`
	Token      string `json:"token,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Correct    bool   `json:"correct"`
}

// Result is the outcome of grading a submission.
type Result struct {
	Score       int          `json:"score"`
	Correct     int          `json:"correct"`
	Total       int          `json:"total"`
	NeedsManual bool         `json:"needs_manual"`
	Items       []ItemResult `json:"items"`
}

// Strategy grades one modality.
type Strategy interface {
	Modality() models.Modality
	Grade(submission Submission, key AnswerKey) (Result, error)
}

var strategies = map[models.Modality]Strategy{
	models.ModalityChoiceBased: ChoiceStrategy{},
	models.ModalityOrdering:    OrderingStrategy{},
	models.ModalityFreeText:    FreeTextStrategy{},
}

// For returns the strategy registered for the modality.
func For(modality models.Modality) (Strategy, error) {
	strategy, ok := strategies[modality]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModality, modality)
	}
	return strategy, nil
}

// Percentage returns round(correct/total*100) with halves rounded up.
// An imperfect result never rounds up to 100.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}
	score := (200*correct + total) / (2 * total)
	if score == 100 && correct < total {
		return 99
	}
	return score
}
