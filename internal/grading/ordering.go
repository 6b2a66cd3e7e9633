package grading

import (
	"math/rand/v2"
	"strings"

	"github.com/noah-isme/tempo-go-api/internal/models"
)

// DefaultSequenceDelimiter separates tokens of a raw ordering submission.
const DefaultSequenceDelimiter = ","

// OrderingStrategy compares the submitted sequence with the canonical one position by position.
//
// The denominator is the longer of the two sequences, so trailing extra tokens count as
// misplaced and only an exact match scores 100.
type OrderingStrategy struct{}

// Modality implements Strategy.
func (OrderingStrategy) Modality() models.Modality {
	return models.ModalityOrdering
}

// Grade implements Strategy.
func (OrderingStrategy) Grade(submission Submission, key AnswerKey) (Result, error) {
	canonical := key.Canonical
	if len(canonical) == 0 {
		return Result{}, ErrInvalidCanonical
	}

	submitted := submission.Sequence
	total := len(canonical)
	if len(submitted) > total {
		total = len(submitted)
	}

	result := Result{Total: total, Items: make([]ItemResult, 0, total)}
	for idx := 0; idx < total; idx++ {
		item := ItemResult{Index: idx}
		if idx < len(submitted) {
			item.Token = submitted[idx]
		}
		if idx < len(canonical) {
			item.Expected = canonical[idx]
		}
		if idx < len(submitted) && idx < len(canonical) && submitted[idx] == canonical[idx] {
			item.Correct = true
			result.Correct++
		}
		result.Items = append(result.Items, item)
	}

	result.Score = Percentage(result.Correct, total)
	return result, nil
}

// SplitSequence splits a raw submission on the delimiter and trims each token.
// Empty tokens are dropped.
func SplitSequence(raw, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultSequenceDelimiter
	}
	parts := strings.Split(raw, delimiter)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

// Shuffle returns a uniformly random permutation of tokens using the given source.
// The input slice is never modified.
func Shuffle(tokens []string, rng *rand.Rand) []string {
	shuffled := make([]string, len(tokens))
	copy(shuffled, tokens)
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
