package grading

import "github.com/noah-isme/tempo-go-api/internal/models"

// ChoiceStrategy scores each (question, answer) pair against the flagged correct answers.
// Duplicate pairs are scored independently.
type ChoiceStrategy struct{}

// Modality implements Strategy.
func (ChoiceStrategy) Modality() models.Modality {
	return models.ModalityChoiceBased
}

// Grade implements Strategy.
func (ChoiceStrategy) Grade(submission Submission, key AnswerKey) (Result, error) {
	total := len(submission.Selections)
	if total == 0 {
		return Result{}, ErrEmptySubmission
	}

	correctByQuestion := make(map[uint]map[uint]struct{}, len(key.CorrectAnswers))
	for _, answer := range key.CorrectAnswers {
		if !answer.IsCorrect {
			continue
		}
		if _, ok := correctByQuestion[answer.QuestionID]; !ok {
			correctByQuestion[answer.QuestionID] = make(map[uint]struct{})
		}
		correctByQuestion[answer.QuestionID][answer.ID] = struct{}{}
	}

	result := Result{Total: total, Items: make([]ItemResult, 0, total)}
	for idx, selection := range submission.Selections {
		_, ok := correctByQuestion[selection.QuestionID][selection.AnswerID]
		if ok {
			result.Correct++
		}
		result.Items = append(result.Items, ItemResult{
			Index:      idx,
			QuestionID: selection.QuestionID,
			AnswerID:   selection.AnswerID,
			Correct:    ok,
		})
	}

	result.Score = Percentage(result.Correct, total)
	return result, nil
}

// QuestionIDs returns the distinct question identifiers referenced by the selections,
// in first-seen order.
func QuestionIDs(selections []Selection) []uint {
	seen := make(map[uint]struct{}, len(selections))
	ids := make([]uint, 0, len(selections))
	for _, selection := range selections {
		if _, ok := seen[selection.QuestionID]; ok {
			continue
		}
		seen[selection.QuestionID] = struct{}{}
		ids = append(ids, selection.QuestionID)
	}
	return ids
}
