package grading

import (
	"strings"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// FreeTextStrategy never scores automatically; it flags the response for manual evaluation.
type FreeTextStrategy struct{}

// Modality implements Strategy.
func (FreeTextStrategy) Modality() models.Modality {
	return models.ModalityFreeText
}

// Grade implements Strategy.
func (FreeTextStrategy) Grade(submission Submission, _ AnswerKey) (Result, error) {
	if strings.TrimSpace(submission.Text) == "" {
		return Result{}, ErrEmptySubmission
	}
	return Result{Total: 1, NeedsManual: true}, nil
}
