package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/grading"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/observability"
	"github.com/noah-isme/tempo-go-api/internal/repository"
)

const defaultMaxWriteAttempts = 3

// creationPolicy reports whether a submission of the modality may create a missing assignment.
var creationPolicy = map[models.Modality]bool{
	models.ModalityChoiceBased: false,
	models.ModalityOrdering:    true,
	models.ModalityFreeText:    true,
}

// AssignmentService manages the assignment lifecycle and grading of submissions.
type AssignmentService interface {
	AssignActivity(ctx context.Context, actor Actor, payload dto.AssignActivityRequest) (dto.AssignmentResponse, error)
	EvaluateActivity(ctx context.Context, actor Actor, payload dto.EvaluateActivityRequest) (dto.AssignmentResponse, error)
	GetPendingReviews(ctx context.Context, professorID uint) ([]dto.PendingReviewResponse, error)
	GetActivitiesForStudent(ctx context.Context, studentID uint) ([]dto.StudentActivityResponse, error)
	GetCompletedActivities(ctx context.Context, studentID uint) ([]dto.CompletedActivityResponse, error)
	GetFreeTextResponses(ctx context.Context, studentID, activityID uint) ([]dto.FreeTextResponse, error)
	SubmitChoice(ctx context.Context, studentID uint, payload dto.ChoiceSubmissionRequest) (dto.GradingResponse, error)
	SubmitOrdering(ctx context.Context, studentID uint, payload dto.OrderingSubmissionRequest) (dto.GradingResponse, error)
	SubmitFreeText(ctx context.Context, studentID uint, payload dto.FreeTextSubmissionRequest) (dto.FreeTextSubmissionResponse, error)
}

// AssignmentServiceConfig tunes grading behaviour.
type AssignmentServiceConfig struct {
	StrictQuestionOwnership bool
	MaxWriteAttempts        int
	SequenceDelimiter       string
}

// AssignmentHooks are optional collaborators notified after successful writes.
type AssignmentHooks struct {
	Metrics MetricsInvalidator
	Audit   AuditRecorder
	Events  GradeEventPublisher
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	catalogue   repository.CatalogueRepository
	freeTexts   repository.FreeTextRepository
	validator   *validator.Validate
	hooks       AssignmentHooks
	config      AssignmentServiceConfig
	comments    *bluemonday.Policy
	responses   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// mutation applies a change to a loaded assignment and reports whether it must be written.
type mutation func(assignment *models.Assignment) bool

// NewAssignmentService constructs the assignment lifecycle manager.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	catalogue repository.CatalogueRepository,
	freeTexts repository.FreeTextRepository,
	validate *validator.Validate,
	hooks AssignmentHooks,
	cfg AssignmentServiceConfig,
	logger zerolog.Logger,
) AssignmentService {
	if cfg.MaxWriteAttempts <= 0 {
		cfg.MaxWriteAttempts = defaultMaxWriteAttempts
	}
	if cfg.SequenceDelimiter == "" {
		cfg.SequenceDelimiter = grading.DefaultSequenceDelimiter
	}

	return &assignmentService{
		assignments: assignments,
		catalogue:   catalogue,
		freeTexts:   freeTexts,
		validator:   validate,
		hooks:       hooks,
		config:      cfg,
		comments:    bluemonday.UGCPolicy(),
		responses:   bluemonday.StrictPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/tempo-go-api/internal/service/assignment"),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) AssignActivity(ctx context.Context, actor Actor, payload dto.AssignActivityRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	activity, found, err := s.catalogue.GetActivity(ctx, payload.ActivityID)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("load activity: %w", err)
	}
	if !found {
		return dto.AssignmentResponse{}, ErrActivityNotFound
	}

	exists, err := s.assignments.Exists(ctx, payload.StudentID, payload.ActivityID)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("check assignment: %w", err)
	}
	if exists {
		return dto.AssignmentResponse{}, ErrAlreadyAssigned
	}

	assignment := models.NewAssignment(payload.StudentID, payload.ActivityID)
	if err := s.assignments.Add(ctx, &assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicateAssignment) {
			return dto.AssignmentResponse{}, ErrAlreadyAssigned
		}
		return dto.AssignmentResponse{}, fmt.Errorf("add assignment: %w", err)
	}
	assignment.Activity = activity

	s.logger.Info().
		Uint("student_id", assignment.StudentID).
		Uint("activity_id", assignment.ActivityID).
		Uint("actor_id", actor.ID).
		Msg("activity assigned")

	s.afterWrite(ctx, actor, assignment, "assignment.created", "")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) EvaluateActivity(ctx context.Context, actor Actor, payload dto.EvaluateActivityRequest) (dto.AssignmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.evaluate", trace.WithAttributes(
		attribute.Int64("assignment.student_id", int64(payload.StudentID)),
		attribute.Int64("assignment.activity_id", int64(payload.ActivityID)),
		attribute.Int64("assignment.actor_id", int64(actor.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssignmentResponse{}, err
	}

	score := *payload.Score
	comment := strings.TrimSpace(s.comments.Sanitize(payload.Comment))

	assignment, written, err := s.writeAssignment(ctx, payload.StudentID, payload.ActivityID, false, func(current *models.Assignment) bool {
		if current.Corrected && current.Score == score && strings.TrimSpace(current.Comment) == comment {
			return false
		}
		current.MarkCorrected(score, comment, s.now())
		return true
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_failed")
		return dto.AssignmentResponse{}, err
	}

	span.SetAttributes(
		attribute.Int("assignment.score", score),
		attribute.Bool("assignment.idempotent", !written),
	)

	if written {
		s.logger.Info().
			Uint("student_id", assignment.StudentID).
			Uint("activity_id", assignment.ActivityID).
			Int("score", score).
			Msg("assignment evaluated")
		s.afterWrite(ctx, actor, assignment, "assignment.evaluated", GradeEventCorrected)
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) GetPendingReviews(ctx context.Context, professorID uint) ([]dto.PendingReviewResponse, error) {
	corrected := false
	assignments, err := s.assignments.QueryByProfessorBond(ctx, repository.BondQuery{
		ProfessorID: professorID,
		Corrected:   &corrected,
	})
	if err != nil {
		return nil, fmt.Errorf("query pending reviews: %w", err)
	}

	responses := make([]dto.PendingReviewResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewPendingReviewResponse(assignment))
	}
	return responses, nil
}

func (s *assignmentService) GetActivitiesForStudent(ctx context.Context, studentID uint) ([]dto.StudentActivityResponse, error) {
	assignments, err := s.assignments.QueryByStudent(ctx, repository.AssignmentQuery{
		StudentID: studentID,
		Order:     repository.OrderByRecentActivity,
	})
	if err != nil {
		return nil, fmt.Errorf("query student assignments: %w", err)
	}

	responses := make([]dto.StudentActivityResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewStudentActivityResponse(assignment))
	}
	return responses, nil
}

func (s *assignmentService) GetCompletedActivities(ctx context.Context, studentID uint) ([]dto.CompletedActivityResponse, error) {
	assignments, err := s.assignments.QueryByStudent(ctx, repository.AssignmentQuery{
		StudentID:     studentID,
		CorrectedOnly: true,
		Order:         repository.OrderByCorrection,
	})
	if err != nil {
		return nil, fmt.Errorf("query completed assignments: %w", err)
	}

	responses := make([]dto.CompletedActivityResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewCompletedActivityResponse(assignment))
	}
	return responses, nil
}

func (s *assignmentService) GetFreeTextResponses(ctx context.Context, studentID, activityID uint) ([]dto.FreeTextResponse, error) {
	exists, err := s.assignments.Exists(ctx, studentID, activityID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if !exists {
		return nil, ErrAssignmentNotFound
	}

	submissions, err := s.freeTexts.ListForAssignment(ctx, studentID, activityID)
	if err != nil {
		return nil, fmt.Errorf("list free-text responses: %w", err)
	}
	return dto.NewFreeTextResponseSlice(submissions), nil
}

// writeAssignment runs a read-modify-write cycle on the pair's assignment. Stale writes
// and lost insert races are retried with a fresh read.
func (s *assignmentService) writeAssignment(ctx context.Context, studentID, activityID uint, create bool, mutate mutation) (models.Assignment, bool, error) {
	for attempt := 1; attempt <= s.config.MaxWriteAttempts; attempt++ {
		assignment, found, err := s.assignments.Get(ctx, studentID, activityID)
		if err != nil {
			return models.Assignment{}, false, fmt.Errorf("load assignment: %w", err)
		}

		if !found {
			if !create {
				return models.Assignment{}, false, ErrAssignmentNotFound
			}
			fresh := models.NewAssignment(studentID, activityID)
			mutate(&fresh)
			if err := s.assignments.Add(ctx, &fresh); err != nil {
				if errors.Is(err, repository.ErrDuplicateAssignment) {
					observability.WriteConflicts().Inc()
					continue
				}
				return models.Assignment{}, false, fmt.Errorf("add assignment: %w", err)
			}
			return fresh, true, nil
		}

		if !mutate(&assignment) {
			return assignment, false, nil
		}
		if err := s.assignments.Update(ctx, &assignment); err != nil {
			if errors.Is(err, repository.ErrStaleAssignment) {
				observability.WriteConflicts().Inc()
				s.logger.Debug().
					Uint("student_id", studentID).
					Uint("activity_id", activityID).
					Int("attempt", attempt).
					Msg("stale assignment write, retrying")
				continue
			}
			return models.Assignment{}, false, fmt.Errorf("update assignment: %w", err)
		}
		return assignment, true, nil
	}

	return models.Assignment{}, false, ErrConcurrentModification
}

// afterWrite notifies the optional hooks. Failures are logged and never undo the write.
func (s *assignmentService) afterWrite(ctx context.Context, actor Actor, assignment models.Assignment, action, eventType string) {
	if s.hooks.Metrics != nil {
		s.hooks.Metrics.Invalidate(ctx, assignment.StudentID)
	}

	if s.hooks.Events != nil && eventType != "" {
		event := GradeEvent{
			Type:         eventType,
			AssignmentID: assignment.ID,
			StudentID:    assignment.StudentID,
			ActivityID:   assignment.ActivityID,
			Modality:     assignment.Activity.Modality,
			Status:       string(assignment.Status),
		}
		if assignment.Corrected {
			score := assignment.Score
			event.Score = &score
		}
		if err := s.hooks.Events.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish grade event")
		}
	}

	if s.hooks.Audit != nil {
		metadata := map[string]interface{}{
			"student_id":  assignment.StudentID,
			"activity_id": assignment.ActivityID,
			"status":      string(assignment.Status),
		}
		if assignment.Corrected {
			metadata["score"] = assignment.Score
		}
		_, _ = s.hooks.Audit.Record(ctx, AuditEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     action,
			EntityType: "assignment",
			EntityID:   &assignment.ID,
			Metadata:   metadata,
		})
	}
}

func observeSubmission(modality models.Modality, outcome string) {
	observability.GradingSubmissions().WithLabelValues(string(modality), outcome).Inc()
}
