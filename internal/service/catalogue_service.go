package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/grading"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/repository"
)

// CatalogueService manages authored activities and their student-facing views.
type CatalogueService interface {
	CreateActivity(ctx context.Context, actor Actor, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	GetActivityForStudent(ctx context.Context, activityID uint) (dto.StudentActivityView, error)
	GetOrderingPresentation(ctx context.Context, activityID uint) (dto.OrderingPresentationResponse, error)
}

type catalogueService struct {
	repo      repository.CatalogueRepository
	validator *validator.Validate
	audit     AuditRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	newRand   func() *rand.Rand
}

// NewCatalogueService constructs the catalogue service.
func NewCatalogueService(repo repository.CatalogueRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) CatalogueService {
	return &catalogueService{
		repo:      repo,
		validator: validate,
		audit:     audit,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "catalogue_service").Logger(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

func (s *catalogueService) CreateActivity(ctx context.Context, actor Actor, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	modality := models.Modality(payload.Modality)
	activity := models.Activity{
		Name:         strings.TrimSpace(s.sanitizer.Sanitize(payload.Name)),
		Description:  strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		Modality:     modality,
		Difficulty:   payload.Difficulty,
		Visible:      true,
		InstrumentID: payload.InstrumentID,
	}
	if payload.Visible != nil {
		activity.Visible = *payload.Visible
	}
	if actor.ID > 0 {
		professorID := actor.ID
		activity.ProfessorID = &professorID
	}
	if payload.ScheduledAt != "" {
		scheduled, err := time.Parse(time.RFC3339, payload.ScheduledAt)
		if err != nil {
			return dto.ActivityResponse{}, fmt.Errorf("%w: scheduled_at", ErrInvalidActivity)
		}
		activity.ScheduledAt = &scheduled
	}

	var ordering *models.OrderingActivity
	sequenceSize := 0

	switch modality {
	case models.ModalityChoiceBased:
		if len(payload.Questions) == 0 {
			return dto.ActivityResponse{}, fmt.Errorf("%w: at least one question is required", ErrInvalidActivity)
		}
		for i, question := range payload.Questions {
			if !hasCorrectAnswer(question.Answers) {
				return dto.ActivityResponse{}, fmt.Errorf("%w: question %d has no correct answer", ErrInvalidActivity, i+1)
			}
		}
		activity.Questions = s.buildQuestions(payload.Questions, true)
	case models.ModalityFreeText:
		if len(payload.Questions) == 0 {
			return dto.ActivityResponse{}, fmt.Errorf("%w: at least one question is required", ErrInvalidActivity)
		}
		activity.Questions = s.buildQuestions(payload.Questions, false)
	case models.ModalityOrdering:
		tokens := make([]string, 0, len(payload.Sequence))
		for _, token := range payload.Sequence {
			if trimmed := strings.TrimSpace(token); trimmed != "" {
				tokens = append(tokens, trimmed)
			}
		}
		if len(tokens) == 0 {
			return dto.ActivityResponse{}, ErrInvalidCanonical
		}
		ordering = &models.OrderingActivity{}
		ordering.SetSequence(tokens)
		sequenceSize = len(tokens)
	default:
		return dto.ActivityResponse{}, fmt.Errorf("%w: %q", grading.ErrUnsupportedModality, modality)
	}

	if err := s.repo.CreateActivity(ctx, &activity, ordering); err != nil {
		return dto.ActivityResponse{}, fmt.Errorf("create activity: %w", err)
	}

	s.logger.Info().
		Uint("activity_id", activity.ID).
		Str("modality", string(activity.Modality)).
		Msg("activity created")

	if s.audit != nil {
		_, _ = s.audit.Record(ctx, AuditEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "activity.created",
			EntityType: "activity",
			EntityID:   &activity.ID,
			Metadata: map[string]interface{}{
				"modality":  string(activity.Modality),
				"questions": len(activity.Questions),
			},
		})
	}

	return dto.NewActivityResponse(activity, sequenceSize), nil
}

func (s *catalogueService) buildQuestions(inputs []dto.QuestionInput, withAnswers bool) []models.Question {
	questions := make([]models.Question, 0, len(inputs))
	for i, input := range inputs {
		question := models.Question{
			Title:    strings.TrimSpace(s.sanitizer.Sanitize(input.Title)),
			Position: i,
		}
		if withAnswers {
			for _, answer := range input.Answers {
				question.Answers = append(question.Answers, models.Answer{
					Text:      strings.TrimSpace(s.sanitizer.Sanitize(answer.Text)),
					IsCorrect: answer.IsCorrect,
				})
			}
		}
		questions = append(questions, question)
	}
	return questions
}

func hasCorrectAnswer(answers []dto.AnswerInput) bool {
	for _, answer := range answers {
		if answer.IsCorrect {
			return true
		}
	}
	return false
}

func (s *catalogueService) GetActivityForStudent(ctx context.Context, activityID uint) (dto.StudentActivityView, error) {
	activity, found, err := s.repo.GetActivityWithQuestions(ctx, activityID)
	if err != nil {
		return dto.StudentActivityView{}, fmt.Errorf("load activity: %w", err)
	}
	if !found || !activity.Visible {
		return dto.StudentActivityView{}, ErrActivityNotFound
	}

	var view dto.StudentActivityView
	if err := copier.CopyWithOption(&view, &activity, copier.Option{DeepCopy: true}); err != nil {
		return dto.StudentActivityView{}, fmt.Errorf("map activity: %w", err)
	}
	if view.Questions == nil {
		view.Questions = []dto.StudentQuestionView{}
	}
	for i := range view.Questions {
		if view.Questions[i].Answers == nil {
			view.Questions[i].Answers = []dto.StudentAnswerView{}
		}
	}

	return view, nil
}

func (s *catalogueService) GetOrderingPresentation(ctx context.Context, activityID uint) (dto.OrderingPresentationResponse, error) {
	canonical, found, err := s.repo.GetOrderingCanonical(ctx, activityID)
	if err != nil {
		return dto.OrderingPresentationResponse{}, fmt.Errorf("load canonical sequence: %w", err)
	}
	if !found {
		return dto.OrderingPresentationResponse{}, ErrActivityNotFound
	}

	tokens := canonical.Tokens()
	if len(tokens) == 0 {
		return dto.OrderingPresentationResponse{}, ErrInvalidCanonical
	}

	return dto.OrderingPresentationResponse{
		ActivityID: activityID,
		Tokens:     grading.Shuffle(tokens, s.newRand()),
	}, nil
}
