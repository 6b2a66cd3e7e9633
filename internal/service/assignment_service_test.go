package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/grading"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/repository"
)

func TestAssignActivityCreatesPendingRecordOnce(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	professor := Actor{ID: 90, Role: models.RoleProfessor}
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createChoiceActivity(t, fx.db, "Scales", 2)

	created, err := fx.service.AssignActivity(ctx, professor, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: activity.ID})
	require.NoError(t, err)
	require.Equal(t, string(models.AssignmentStatusPending), created.Status)
	require.False(t, created.Corrected)
	require.Nil(t, created.Score)
	require.Equal(t, models.ModalityChoiceBased, created.Modality)

	_, err = fx.service.AssignActivity(ctx, professor, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: activity.ID})
	require.ErrorIs(t, err, ErrAlreadyAssigned)

	_, err = fx.service.AssignActivity(ctx, professor, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: 9999})
	require.ErrorIs(t, err, ErrActivityNotFound)

	var count int64
	require.NoError(t, fx.db.Model(&models.Assignment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var audits int64
	require.NoError(t, fx.db.Model(&models.AuditLog{}).Where("action = ?", "assignment.created").Count(&audits).Error)
	require.Equal(t, int64(1), audits)
}

func TestAssignActivityRejectsInvalidPayload(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})

	_, err := fx.service.AssignActivity(context.Background(), Actor{ID: 1, Role: models.RoleProfessor}, dto.AssignActivityRequest{})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
}

func TestEvaluateActivityRequiresExistingAssignment(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createFreeTextActivity(t, fx.db, "Reflection")

	_, err := fx.service.EvaluateActivity(context.Background(), Actor{ID: 7, Role: models.RoleProfessor}, dto.EvaluateActivityRequest{
		StudentID:  student.ID,
		ActivityID: activity.ID,
		Score:      intPointer(80),
	})
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	exists, err := fx.assignments.Exists(context.Background(), student.ID, activity.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestEvaluateActivityMarksCorrectedAndIsIdempotent(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	professor := Actor{ID: 7, Role: models.RoleProfessor}
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createFreeTextActivity(t, fx.db, "Reflection")

	_, err := fx.service.AssignActivity(ctx, professor, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: activity.ID})
	require.NoError(t, err)

	payload := dto.EvaluateActivityRequest{
		StudentID:  student.ID,
		ActivityID: activity.ID,
		Score:      intPointer(85),
		Comment:    "Good phrasing",
	}
	evaluated, err := fx.service.EvaluateActivity(ctx, professor, payload)
	require.NoError(t, err)
	require.True(t, evaluated.Corrected)
	require.Equal(t, string(models.AssignmentStatusDone), evaluated.Status)
	require.NotNil(t, evaluated.Score)
	require.Equal(t, 85, *evaluated.Score)
	require.NotNil(t, evaluated.CorrectedAt)

	stored, found, err := fx.assignments.Get(ctx, student.ID, activity.ID)
	require.NoError(t, err)
	require.True(t, found)
	version := stored.Version

	_, err = fx.service.EvaluateActivity(ctx, professor, payload)
	require.NoError(t, err)

	again, _, err := fx.assignments.Get(ctx, student.ID, activity.ID)
	require.NoError(t, err)
	require.Equal(t, version, again.Version)
	require.Len(t, fx.events.Events(), 1)
	require.Equal(t, GradeEventCorrected, fx.events.Events()[0].Type)

	payload.Score = intPointer(90)
	updated, err := fx.service.EvaluateActivity(ctx, professor, payload)
	require.NoError(t, err)
	require.Equal(t, 90, *updated.Score)
	require.Len(t, fx.events.Events(), 2)
}

func TestEvaluateActivityRejectsOutOfRangeScore(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})

	_, err := fx.service.EvaluateActivity(context.Background(), Actor{ID: 1}, dto.EvaluateActivityRequest{
		StudentID:  1,
		ActivityID: 1,
		Score:      intPointer(101),
	})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
}

func TestEvaluateActivitySanitizesComment(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createFreeTextActivity(t, fx.db, "Reflection")
	_, err := fx.service.AssignActivity(ctx, Actor{ID: 7}, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: activity.ID})
	require.NoError(t, err)

	evaluated, err := fx.service.EvaluateActivity(ctx, Actor{ID: 7}, dto.EvaluateActivityRequest{
		StudentID:  student.ID,
		ActivityID: activity.ID,
		Score:      intPointer(70),
		Comment:    `<script>alert(1)</script><b>Watch the tempo</b>`,
	})
	require.NoError(t, err)
	require.Equal(t, "<b>Watch the tempo</b>", evaluated.Comment)
}

func TestSubmitChoiceScoresAgainstCorrectAnswers(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createChoiceActivity(t, fx.db, "Intervals", 4)

	_, err := fx.service.AssignActivity(ctx, Actor{ID: 7}, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: activity.ID})
	require.NoError(t, err)

	selections := make([]grading.Selection, 0, 4)
	for i, question := range activity.Questions {
		answer := question.Answers[0]
		if i == 3 {
			answer = question.Answers[1]
		}
		selections = append(selections, grading.Selection{QuestionID: question.ID, AnswerID: answer.ID})
	}

	response, err := fx.service.SubmitChoice(ctx, student.ID, dto.ChoiceSubmissionRequest{ActivityID: activity.ID, Selections: selections})
	require.NoError(t, err)
	require.Equal(t, 75, response.Score)
	require.Equal(t, 3, response.Correct)
	require.Equal(t, 4, response.Total)
	require.True(t, response.Assignment.Corrected)
	require.Equal(t, string(models.AssignmentStatusDone), response.Assignment.Status)
	require.Equal(t, 75, *response.Assignment.Score)

	require.Contains(t, fx.invalidated.students, student.ID)
	events := fx.events.Events()
	require.Len(t, events, 1)
	require.Equal(t, 75, *events[0].Score)
	require.Equal(t, models.ModalityChoiceBased, events[0].Modality)
}

func TestSubmitChoiceRequiresAssignment(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createChoiceActivity(t, fx.db, "Intervals", 1)
	question := activity.Questions[0]

	_, err := fx.service.SubmitChoice(context.Background(), student.ID, dto.ChoiceSubmissionRequest{
		ActivityID: activity.ID,
		Selections: []grading.Selection{{QuestionID: question.ID, AnswerID: question.Answers[0].ID}},
	})
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	exists, err := fx.assignments.Exists(context.Background(), student.ID, activity.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSubmitChoiceRejectsEmptyAndMismatchedSubmissions(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	choice := createChoiceActivity(t, fx.db, "Intervals", 1)
	ordering := createOrderingActivity(t, fx.db, "Chords", []string{"C", "F", "G"})

	_, err := fx.service.SubmitChoice(context.Background(), student.ID, dto.ChoiceSubmissionRequest{ActivityID: choice.ID})
	require.ErrorIs(t, err, ErrEmptySubmission)

	_, err = fx.service.SubmitChoice(context.Background(), student.ID, dto.ChoiceSubmissionRequest{
		ActivityID: ordering.ID,
		Selections: []grading.Selection{{QuestionID: 1, AnswerID: 1}},
	})
	require.ErrorIs(t, err, ErrModalityMismatch)

	_, err = fx.service.SubmitChoice(context.Background(), student.ID, dto.ChoiceSubmissionRequest{
		ActivityID: 4242,
		Selections: []grading.Selection{{QuestionID: 1, AnswerID: 1}},
	})
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestSubmitChoiceForeignQuestionPolicy(t *testing.T) {
	ctx := context.Background()

	permissive := newAssignmentFixture(t, AssignmentServiceConfig{})
	student := createUser(t, permissive.db, "Ana", models.RoleStudent)
	target := createChoiceActivity(t, permissive.db, "Target", 1)
	other := createChoiceActivity(t, permissive.db, "Other", 1)
	_, err := permissive.service.AssignActivity(ctx, Actor{ID: 7}, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: target.ID})
	require.NoError(t, err)

	foreign := other.Questions[0]
	selections := []grading.Selection{{QuestionID: foreign.ID, AnswerID: foreign.Answers[0].ID}}

	response, err := permissive.service.SubmitChoice(ctx, student.ID, dto.ChoiceSubmissionRequest{ActivityID: target.ID, Selections: selections})
	require.NoError(t, err)
	require.Equal(t, 100, response.Score)

	strict := newAssignmentFixture(t, AssignmentServiceConfig{StrictQuestionOwnership: true})
	student = createUser(t, strict.db, "Ana", models.RoleStudent)
	target = createChoiceActivity(t, strict.db, "Target", 1)
	other = createChoiceActivity(t, strict.db, "Other", 1)
	_, err = strict.service.AssignActivity(ctx, Actor{ID: 7}, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: target.ID})
	require.NoError(t, err)

	foreign = other.Questions[0]
	selections = []grading.Selection{{QuestionID: foreign.ID, AnswerID: foreign.Answers[0].ID}}
	_, err = strict.service.SubmitChoice(ctx, student.ID, dto.ChoiceSubmissionRequest{ActivityID: target.ID, Selections: selections})
	require.ErrorIs(t, err, ErrForeignQuestion)
}

func TestSubmitOrderingCreatesAssignmentImplicitly(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createOrderingActivity(t, fx.db, "Cadence", []string{"A", "B", "C"})

	response, err := fx.service.SubmitOrdering(ctx, student.ID, dto.OrderingSubmissionRequest{
		ActivityID: activity.ID,
		Sequence:   []string{"A", "C", "B"},
	})
	require.NoError(t, err)
	require.Equal(t, 33, response.Score)
	require.True(t, response.Assignment.Corrected)

	stored, found, err := fx.assignments.Get(ctx, student.ID, activity.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 33, stored.Score)
	require.Equal(t, models.AssignmentStatusDone, stored.Status)

	response, err = fx.service.SubmitOrdering(ctx, student.ID, dto.OrderingSubmissionRequest{
		ActivityID: activity.ID,
		Raw:        " A , B , C ",
	})
	require.NoError(t, err)
	require.Equal(t, 100, response.Score)

	var count int64
	require.NoError(t, fx.db.Model(&models.Assignment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubmitOrderingUsesConfiguredDelimiter(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{SequenceDelimiter: "|"})
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createOrderingActivity(t, fx.db, "Cadence", []string{"I", "IV", "V"})

	response, err := fx.service.SubmitOrdering(context.Background(), student.ID, dto.OrderingSubmissionRequest{
		ActivityID: activity.ID,
		Raw:        "I|IV|V",
	})
	require.NoError(t, err)
	require.Equal(t, 100, response.Score)
}

func TestSubmitOrderingWithoutCanonicalSequence(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	missing := createOrderingActivity(t, fx.db, "Missing", nil)
	empty := createOrderingActivity(t, fx.db, "Empty", []string{})

	_, err := fx.service.SubmitOrdering(context.Background(), student.ID, dto.OrderingSubmissionRequest{
		ActivityID: missing.ID,
		Sequence:   []string{"A"},
	})
	require.ErrorIs(t, err, ErrActivityNotFound)

	_, err = fx.service.SubmitOrdering(context.Background(), student.ID, dto.OrderingSubmissionRequest{
		ActivityID: empty.ID,
		Sequence:   []string{"A"},
	})
	require.ErrorIs(t, err, ErrInvalidCanonical)

	exists, err := fx.assignments.Exists(context.Background(), student.ID, missing.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSubmitFreeTextCreatesPlaceholderOnce(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createFreeTextActivity(t, fx.db, "Reflection")
	question := activity.Questions[0]

	first, err := fx.service.SubmitFreeText(ctx, student.ID, dto.FreeTextSubmissionRequest{
		QuestionID: question.ID,
		Response:   "I practise scales slowly with a metronome",
	})
	require.NoError(t, err)
	require.True(t, first.Created)
	require.Equal(t, string(models.AssignmentStatusDone), first.Assignment.Status)
	require.False(t, first.Assignment.Corrected)
	require.Nil(t, first.Assignment.Score)

	second, err := fx.service.SubmitFreeText(ctx, student.ID, dto.FreeTextSubmissionRequest{
		QuestionID: question.ID,
		Response:   "Then I play the piece at full tempo",
	})
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.Assignment.ID, second.Assignment.ID)

	responses, err := fx.service.GetFreeTextResponses(ctx, student.ID, activity.ID)
	require.NoError(t, err)
	require.Len(t, responses, 2)

	events := fx.events.Events()
	require.Len(t, events, 1)
	require.Equal(t, GradeEventTurnedIn, events[0].Type)
	require.Nil(t, events[0].Score)
}

func TestSubmitFreeTextLeavesPendingAssignmentUntouched(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createFreeTextActivity(t, fx.db, "Reflection")

	_, err := fx.service.AssignActivity(ctx, Actor{ID: 7}, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: activity.ID})
	require.NoError(t, err)

	response, err := fx.service.SubmitFreeText(ctx, student.ID, dto.FreeTextSubmissionRequest{
		QuestionID: activity.Questions[0].ID,
		Response:   "Long tones every morning",
	})
	require.NoError(t, err)
	require.False(t, response.Created)
	require.Equal(t, string(models.AssignmentStatusPending), response.Assignment.Status)
}

func TestSubmitFreeTextValidation(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	freeText := createFreeTextActivity(t, fx.db, "Reflection")
	choice := createChoiceActivity(t, fx.db, "Intervals", 1)

	_, err := fx.service.SubmitFreeText(ctx, student.ID, dto.FreeTextSubmissionRequest{QuestionID: 4242, Response: "Hello"})
	require.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = fx.service.SubmitFreeText(ctx, student.ID, dto.FreeTextSubmissionRequest{QuestionID: choice.Questions[0].ID, Response: "Hello"})
	require.ErrorIs(t, err, ErrModalityMismatch)

	_, err = fx.service.SubmitFreeText(ctx, student.ID, dto.FreeTextSubmissionRequest{QuestionID: freeText.Questions[0].ID, Response: "<b></b>"})
	require.ErrorIs(t, err, ErrEmptyResponse)

	var count int64
	require.NoError(t, fx.db.Model(&models.FreeTextSubmission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestGetPendingReviewsFiltersByActiveBond(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	professor := createUser(t, fx.db, "Prof", models.RoleProfessor)
	bonded := createUser(t, fx.db, "Bonded", models.RoleStudent)
	former := createUser(t, fx.db, "Former", models.RoleStudent)
	createBond(t, fx.db, professor.ID, bonded.ID, true)
	createBond(t, fx.db, professor.ID, former.ID, false)

	pending := createFreeTextActivity(t, fx.db, "Pending")
	graded := createFreeTextActivity(t, fx.db, "Graded")
	actor := Actor{ID: professor.ID, Role: models.RoleProfessor}

	for _, studentID := range []uint{bonded.ID, former.ID} {
		_, err := fx.service.AssignActivity(ctx, actor, dto.AssignActivityRequest{StudentID: studentID, ActivityID: pending.ID})
		require.NoError(t, err)
	}
	_, err := fx.service.AssignActivity(ctx, actor, dto.AssignActivityRequest{StudentID: bonded.ID, ActivityID: graded.ID})
	require.NoError(t, err)
	_, err = fx.service.EvaluateActivity(ctx, actor, dto.EvaluateActivityRequest{StudentID: bonded.ID, ActivityID: graded.ID, Score: intPointer(60)})
	require.NoError(t, err)

	reviews, err := fx.service.GetPendingReviews(ctx, professor.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, "Bonded", reviews[0].StudentName)
	require.Equal(t, "Pending", reviews[0].ActivityName)
}

func TestStudentQueriesHideUncorrectedScores(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	ctx := context.Background()
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	first := createOrderingActivity(t, fx.db, "First", []string{"A", "B"})
	second := createOrderingActivity(t, fx.db, "Second", []string{"A", "B"})
	open := createFreeTextActivity(t, fx.db, "Open")

	_, err := fx.service.SubmitOrdering(ctx, student.ID, dto.OrderingSubmissionRequest{ActivityID: first.ID, Sequence: []string{"A", "B"}})
	require.NoError(t, err)
	_, err = fx.service.SubmitOrdering(ctx, student.ID, dto.OrderingSubmissionRequest{ActivityID: second.ID, Sequence: []string{"B", "A"}})
	require.NoError(t, err)
	_, err = fx.service.AssignActivity(ctx, Actor{ID: 7}, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: open.ID})
	require.NoError(t, err)

	all, err := fx.service.GetActivitiesForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, item := range all {
		if item.ActivityID == open.ID {
			require.Nil(t, item.Score)
			require.Equal(t, "Open", item.Name)
		} else {
			require.NotNil(t, item.Score)
		}
	}

	completed, err := fx.service.GetCompletedActivities(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	scores := map[uint]int{}
	for _, item := range completed {
		require.Equal(t, models.ModalityOrdering, item.Modality)
		scores[item.ActivityID] = item.Score
	}
	require.Equal(t, 100, scores[first.ID])
	require.Equal(t, 0, scores[second.ID])
}

type staleAssignmentRepository struct {
	repository.AssignmentRepository
	failures int32
	calls    atomic.Int32
}

func (r *staleAssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	if r.calls.Add(1) <= r.failures {
		return repository.ErrStaleAssignment
	}
	return r.AssignmentRepository.Update(ctx, assignment)
}

func newStaleFixture(t *testing.T, failures int32) (AssignmentService, *staleAssignmentRepository, models.User, models.Activity) {
	t.Helper()
	db := setupServiceDB(t)
	stale := &staleAssignmentRepository{AssignmentRepository: repository.NewAssignmentRepository(db), failures: failures}
	svc := NewAssignmentService(
		stale,
		repository.NewCatalogueRepository(db),
		repository.NewFreeTextRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		AssignmentHooks{},
		AssignmentServiceConfig{MaxWriteAttempts: 3},
		zerolog.Nop(),
	)
	student := createUser(t, db, "Ana", models.RoleStudent)
	activity := createOrderingActivity(t, db, "Cadence", []string{"A", "B"})
	_, err := svc.AssignActivity(context.Background(), Actor{ID: 7}, dto.AssignActivityRequest{StudentID: student.ID, ActivityID: activity.ID})
	require.NoError(t, err)
	return svc, stale, student, activity
}

func TestSubmitRetriesStaleWrites(t *testing.T) {
	svc, stale, student, activity := newStaleFixture(t, 2)

	response, err := svc.SubmitOrdering(context.Background(), student.ID, dto.OrderingSubmissionRequest{ActivityID: activity.ID, Sequence: []string{"A", "B"}})
	require.NoError(t, err)
	require.Equal(t, 100, response.Score)
	require.Equal(t, int32(3), stale.calls.Load())
}

func TestSubmitGivesUpAfterRepeatedConflicts(t *testing.T) {
	svc, stale, student, activity := newStaleFixture(t, 10)

	_, err := svc.SubmitOrdering(context.Background(), student.ID, dto.OrderingSubmissionRequest{ActivityID: activity.ID, Sequence: []string{"A", "B"}})
	require.ErrorIs(t, err, ErrConcurrentModification)
	require.Equal(t, int32(3), stale.calls.Load())
}

func TestSubmitOrderingExtraTokensCannotReachFullScore(t *testing.T) {
	fx := newAssignmentFixture(t, AssignmentServiceConfig{})
	student := createUser(t, fx.db, "Ana", models.RoleStudent)
	activity := createOrderingActivity(t, fx.db, "Cadence", []string{"A", "B", "C"})

	response, err := fx.service.SubmitOrdering(context.Background(), student.ID, dto.OrderingSubmissionRequest{
		ActivityID: activity.ID,
		Sequence:   []string{"A", "B", "C", "D"},
	})
	require.NoError(t, err)
	require.Equal(t, 75, response.Score)
	require.Equal(t, 3, response.Correct)
	require.Equal(t, 4, response.Total)
}

func TestEveryModalityHasStrategyAndCreationPolicy(t *testing.T) {
	for _, modality := range models.Modalities {
		strategy, err := grading.For(modality)
		require.NoError(t, err)
		require.Equal(t, modality, strategy.Modality())

		_, ok := creationPolicy[modality]
		require.True(t, ok, "missing creation policy for %s", modality)
	}
}

func TestGradeForDispatchesOnModality(t *testing.T) {
	ordering, err := gradeFor(models.ModalityOrdering,
		grading.Submission{Sequence: []string{"A", "B"}},
		grading.AnswerKey{Canonical: []string{"A", "B"}},
	)
	require.NoError(t, err)
	require.Equal(t, 100, ordering.Score)

	freeText, err := gradeFor(models.ModalityFreeText, grading.Submission{Text: "Rubato"}, grading.AnswerKey{})
	require.NoError(t, err)
	require.True(t, freeText.NeedsManual)

	_, err = gradeFor(models.Modality("essay"), grading.Submission{Text: "Rubato"}, grading.AnswerKey{})
	require.ErrorIs(t, err, grading.ErrUnsupportedModality)
}
