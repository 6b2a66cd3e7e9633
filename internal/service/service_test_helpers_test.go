package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/tempo-go-api/internal/database"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/repository"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.ConnectSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: uuid.NewString() + "@example.com", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createBond(t *testing.T, db *gorm.DB, professorID, studentID uint, active bool) {
	t.Helper()
	bond := models.ProfessorStudentBond{ProfessorID: professorID, StudentID: studentID, InstrumentID: 1, Active: true}
	require.NoError(t, db.Create(&bond).Error)
	if !active {
		require.NoError(t, db.Model(&bond).Update("active", false).Error)
	}
}

// createChoiceActivity stores one question per entry; each question gets a correct and a wrong answer.
func createChoiceActivity(t *testing.T, db *gorm.DB, name string, questions int) models.Activity {
	t.Helper()
	activity := models.Activity{Name: name, Modality: models.ModalityChoiceBased, InstrumentID: 1, Visible: true}
	for i := 0; i < questions; i++ {
		activity.Questions = append(activity.Questions, models.Question{
			Title:    fmt.Sprintf("Question %d", i+1),
			Position: i,
			Answers: []models.Answer{
				{Text: "right", IsCorrect: true},
				{Text: "wrong"},
			},
		})
	}
	require.NoError(t, repository.NewCatalogueRepository(db).CreateActivity(context.Background(), &activity, nil))
	return activity
}

func createOrderingActivity(t *testing.T, db *gorm.DB, name string, sequence []string) models.Activity {
	t.Helper()
	activity := models.Activity{Name: name, Modality: models.ModalityOrdering, InstrumentID: 1, Visible: true}
	var ordering *models.OrderingActivity
	if sequence != nil {
		ordering = &models.OrderingActivity{}
		ordering.SetSequence(sequence)
	}
	require.NoError(t, repository.NewCatalogueRepository(db).CreateActivity(context.Background(), &activity, ordering))
	return activity
}

func createFreeTextActivity(t *testing.T, db *gorm.DB, name string) models.Activity {
	t.Helper()
	activity := models.Activity{
		Name:         name,
		Modality:     models.ModalityFreeText,
		InstrumentID: 1,
		Visible:      true,
		Questions:    []models.Question{{Title: "Describe your practice routine"}},
	}
	require.NoError(t, repository.NewCatalogueRepository(db).CreateActivity(context.Background(), &activity, nil))
	return activity
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []GradeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event GradeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []GradeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]GradeEvent(nil), p.events...)
}

type recordingInvalidator struct {
	mu       sync.Mutex
	students []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, studentID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students = append(r.students, studentID)
}

type assignmentFixture struct {
	db          *gorm.DB
	service     AssignmentService
	assignments repository.AssignmentRepository
	events      *recordingPublisher
	invalidated *recordingInvalidator
}

func newAssignmentFixture(t *testing.T, cfg AssignmentServiceConfig) assignmentFixture {
	t.Helper()
	db := setupServiceDB(t)
	assignments := repository.NewAssignmentRepository(db)
	events := &recordingPublisher{}
	invalidated := &recordingInvalidator{}
	audit := NewAuditService(repository.NewAuditLogRepository(db), zerolog.Nop())

	svc := NewAssignmentService(
		assignments,
		repository.NewCatalogueRepository(db),
		repository.NewFreeTextRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		AssignmentHooks{Metrics: invalidated, Audit: audit, Events: events},
		cfg,
		zerolog.Nop(),
	)

	return assignmentFixture{db: db, service: svc, assignments: assignments, events: events, invalidated: invalidated}
}

func intPointer(value int) *int {
	return &value
}
