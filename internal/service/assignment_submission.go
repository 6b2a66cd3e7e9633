package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/grading"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/observability"
)

const (
	outcomeGraded   = "graded"
	outcomeManual   = "manual"
	outcomeRejected = "rejected"
)

func (s *assignmentService) SubmitChoice(ctx context.Context, studentID uint, payload dto.ChoiceSubmissionRequest) (dto.GradingResponse, error) {
	ctx, span := s.startSubmissionSpan(ctx, "assignment.submit_choice", studentID, payload.ActivityID)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.GradingResponse{}, s.reject(span, models.ModalityChoiceBased, err)
	}
	if len(payload.Selections) == 0 {
		return dto.GradingResponse{}, s.reject(span, models.ModalityChoiceBased, ErrEmptySubmission)
	}

	activity, err := s.loadActivity(ctx, payload.ActivityID, models.ModalityChoiceBased)
	if err != nil {
		return dto.GradingResponse{}, s.reject(span, models.ModalityChoiceBased, err)
	}

	questionIDs := grading.QuestionIDs(payload.Selections)
	if s.config.StrictQuestionOwnership {
		if err := s.checkOwnership(ctx, activity.ID, questionIDs); err != nil {
			return dto.GradingResponse{}, s.reject(span, models.ModalityChoiceBased, err)
		}
	}

	correct, err := s.catalogue.GetCorrectAnswers(ctx, questionIDs)
	if err != nil {
		span.RecordError(err)
		return dto.GradingResponse{}, fmt.Errorf("load correct answers: %w", err)
	}

	result, err := gradeFor(activity.Modality,
		grading.Submission{Selections: payload.Selections},
		grading.AnswerKey{CorrectAnswers: correct},
	)
	if err != nil {
		return dto.GradingResponse{}, s.reject(span, models.ModalityChoiceBased, err)
	}

	return s.storeAutomaticGrade(ctx, span, studentID, activity, result)
}

func (s *assignmentService) SubmitOrdering(ctx context.Context, studentID uint, payload dto.OrderingSubmissionRequest) (dto.GradingResponse, error) {
	ctx, span := s.startSubmissionSpan(ctx, "assignment.submit_ordering", studentID, payload.ActivityID)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.GradingResponse{}, s.reject(span, models.ModalityOrdering, err)
	}

	tokens := make([]string, 0, len(payload.Sequence))
	for _, token := range payload.Sequence {
		tokens = append(tokens, strings.TrimSpace(token))
	}
	if len(tokens) == 0 && strings.TrimSpace(payload.Raw) != "" {
		tokens = grading.SplitSequence(payload.Raw, s.config.SequenceDelimiter)
	}

	activity, err := s.loadActivity(ctx, payload.ActivityID, models.ModalityOrdering)
	if err != nil {
		return dto.GradingResponse{}, s.reject(span, models.ModalityOrdering, err)
	}

	canonical, found, err := s.catalogue.GetOrderingCanonical(ctx, activity.ID)
	if err != nil {
		span.RecordError(err)
		return dto.GradingResponse{}, fmt.Errorf("load canonical sequence: %w", err)
	}
	if !found {
		return dto.GradingResponse{}, s.reject(span, models.ModalityOrdering, ErrActivityNotFound)
	}

	result, err := gradeFor(activity.Modality,
		grading.Submission{Sequence: tokens},
		grading.AnswerKey{Canonical: canonical.Tokens()},
	)
	if err != nil {
		return dto.GradingResponse{}, s.reject(span, models.ModalityOrdering, err)
	}

	return s.storeAutomaticGrade(ctx, span, studentID, activity, result)
}

func (s *assignmentService) SubmitFreeText(ctx context.Context, studentID uint, payload dto.FreeTextSubmissionRequest) (dto.FreeTextSubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.submit_free_text", trace.WithAttributes(
		attribute.Int64("assignment.student_id", int64(studentID)),
		attribute.Int64("assignment.question_id", int64(payload.QuestionID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.FreeTextSubmissionResponse{}, s.reject(span, models.ModalityFreeText, err)
	}

	clean, err := s.cleanResponse(payload.Response)
	if err != nil {
		return dto.FreeTextSubmissionResponse{}, s.reject(span, models.ModalityFreeText, err)
	}

	question, found, err := s.catalogue.GetQuestion(ctx, payload.QuestionID)
	if err != nil {
		span.RecordError(err)
		return dto.FreeTextSubmissionResponse{}, fmt.Errorf("load question: %w", err)
	}
	if !found || question.Activity == nil {
		return dto.FreeTextSubmissionResponse{}, s.reject(span, models.ModalityFreeText, ErrQuestionNotFound)
	}
	if question.Activity.Modality != models.ModalityFreeText {
		return dto.FreeTextSubmissionResponse{}, s.reject(span, models.ModalityFreeText, ErrModalityMismatch)
	}

	result, err := gradeFor(question.Activity.Modality, grading.Submission{Text: clean}, grading.AnswerKey{})
	if err != nil {
		return dto.FreeTextSubmissionResponse{}, s.reject(span, models.ModalityFreeText, err)
	}

	submission := models.FreeTextSubmission{
		QuestionID:  question.ID,
		StudentID:   studentID,
		Response:    clean,
		SubmittedAt: s.now(),
	}
	placeholder := models.NewAssignment(studentID, question.ActivityID)
	placeholder.MarkTurnedIn()

	created, err := s.freeTexts.Submit(ctx, &submission, &placeholder)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_failed")
		return dto.FreeTextSubmissionResponse{}, fmt.Errorf("store free-text response: %w", err)
	}

	assignment, found, err := s.assignments.Get(ctx, studentID, question.ActivityID)
	if err != nil {
		return dto.FreeTextSubmissionResponse{}, fmt.Errorf("load assignment: %w", err)
	}
	if !found {
		return dto.FreeTextSubmissionResponse{}, ErrAssignmentNotFound
	}

	observeSubmission(models.ModalityFreeText, outcomeManual)
	span.SetAttributes(
		attribute.Bool("assignment.created", created),
		attribute.Bool("grading.needs_manual", result.NeedsManual),
	)

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("question_id", question.ID).
		Bool("assignment_created", created).
		Msg("free-text response stored")

	if created {
		s.afterWrite(ctx, Actor{ID: studentID, Role: models.RoleStudent}, assignment, "assignment.turned_in", GradeEventTurnedIn)
	}

	return dto.FreeTextSubmissionResponse{
		SubmissionID: submission.ID,
		QuestionID:   submission.QuestionID,
		SubmittedAt:  submission.SubmittedAt,
		Assignment:   dto.NewAssignmentResponse(assignment),
		Created:      created,
	}, nil
}

// gradeFor scores the submission with the strategy registered for the modality.
func gradeFor(modality models.Modality, submission grading.Submission, key grading.AnswerKey) (grading.Result, error) {
	strategy, err := grading.For(modality)
	if err != nil {
		return grading.Result{}, err
	}
	return strategy.Grade(submission, key)
}

func (s *assignmentService) storeAutomaticGrade(ctx context.Context, span trace.Span, studentID uint, activity models.Activity, result grading.Result) (dto.GradingResponse, error) {
	create, ok := creationPolicy[activity.Modality]
	if !ok {
		return dto.GradingResponse{}, s.reject(span, activity.Modality, fmt.Errorf("%w: %q", grading.ErrUnsupportedModality, activity.Modality))
	}

	assignment, _, err := s.writeAssignment(ctx, studentID, activity.ID, create, func(current *models.Assignment) bool {
		current.MarkCorrected(result.Score, current.Comment, s.now())
		return true
	})
	if err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return dto.GradingResponse{}, s.reject(span, activity.Modality, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_write_failed")
		return dto.GradingResponse{}, err
	}
	assignment.Activity = activity

	observeSubmission(activity.Modality, outcomeGraded)
	observability.GradingScores().WithLabelValues(string(activity.Modality)).Observe(float64(result.Score))
	span.SetAttributes(
		attribute.Int("grading.score", result.Score),
		attribute.Int("grading.correct", result.Correct),
		attribute.Int("grading.total", result.Total),
	)

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("activity_id", activity.ID).
		Str("modality", string(activity.Modality)).
		Int("score", result.Score).
		Msg("submission graded")

	s.afterWrite(ctx, Actor{ID: studentID, Role: models.RoleStudent}, assignment, "assignment.graded", GradeEventCorrected)

	return dto.NewGradingResponse(assignment, result), nil
}

func (s *assignmentService) loadActivity(ctx context.Context, activityID uint, modality models.Modality) (models.Activity, error) {
	activity, found, err := s.catalogue.GetActivity(ctx, activityID)
	if err != nil {
		return models.Activity{}, fmt.Errorf("load activity: %w", err)
	}
	if !found {
		return models.Activity{}, ErrActivityNotFound
	}
	if activity.Modality != modality {
		return models.Activity{}, ErrModalityMismatch
	}
	return activity, nil
}

func (s *assignmentService) checkOwnership(ctx context.Context, activityID uint, questionIDs []uint) error {
	owned, err := s.catalogue.QuestionIDsForActivity(ctx, activityID)
	if err != nil {
		return fmt.Errorf("load activity questions: %w", err)
	}

	allowed := make(map[uint]struct{}, len(owned))
	for _, id := range owned {
		allowed[id] = struct{}{}
	}
	for _, id := range questionIDs {
		if _, ok := allowed[id]; !ok {
			return ErrForeignQuestion
		}
	}
	return nil
}

// cleanResponse strips markup and rejects responses that are not plain text.
func (s *assignmentService) cleanResponse(raw string) (string, error) {
	clean := strings.TrimSpace(s.responses.Sanitize(raw))
	if clean == "" {
		return "", ErrEmptyResponse
	}

	for detected := mimetype.Detect([]byte(clean)); detected != nil; detected = detected.Parent() {
		if detected.Is("text/plain") {
			return clean, nil
		}
	}
	return "", ErrEmptyResponse
}

func (s *assignmentService) startSubmissionSpan(ctx context.Context, name string, studentID, activityID uint) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int64("assignment.student_id", int64(studentID)),
		attribute.Int64("assignment.activity_id", int64(activityID)),
	))
}

func (s *assignmentService) reject(span trace.Span, modality models.Modality, err error) error {
	observeSubmission(modality, outcomeRejected)
	span.RecordError(err)
	span.SetStatus(codes.Error, "submission_rejected")
	return err
}
