package service

import (
	"errors"

	"github.com/noah-isme/tempo-go-api/internal/grading"
)

var (
	// ErrAlreadyAssigned indicates the student already has the activity.
	ErrAlreadyAssigned = errors.New("activity already assigned to student")
	// ErrAssignmentNotFound indicates no assignment exists for the pair.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrActivityNotFound indicates the activity or its canonical content is missing.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrQuestionNotFound indicates the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrModalityMismatch indicates the submission does not fit the activity modality.
	ErrModalityMismatch = errors.New("submission does not match activity modality")
	// ErrForeignQuestion indicates a selection references a question of another activity.
	ErrForeignQuestion = errors.New("selection references a question outside the activity")
	// ErrConcurrentModification indicates repeated write conflicts on the same assignment.
	ErrConcurrentModification = errors.New("assignment was modified concurrently")
	// ErrEmptyResponse indicates a free-text answer was blank or not plain text.
	ErrEmptyResponse = errors.New("response must contain plain text")
	// ErrInvalidActivity indicates authored catalogue content is incomplete.
	ErrInvalidActivity = errors.New("activity content is incomplete")
	// ErrStudentNotBonded indicates the professor has no active bond with the student.
	ErrStudentNotBonded = errors.New("student is not bonded to professor")

	// ErrEmptySubmission indicates there was nothing to grade.
	ErrEmptySubmission = grading.ErrEmptySubmission
	// ErrInvalidCanonical indicates the stored canonical sequence is empty.
	ErrInvalidCanonical = grading.ErrInvalidCanonical
)
