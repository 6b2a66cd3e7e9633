package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/tempo-go-api/internal/config"
	"github.com/noah-isme/tempo-go-api/internal/database"
	"github.com/noah-isme/tempo-go-api/internal/handler"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/repository"
	"github.com/noah-isme/tempo-go-api/internal/router"
	"github.com/noah-isme/tempo-go-api/internal/service"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

func setupTestApp(t *testing.T) testApp {
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

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	logger := zerolog.New(io.Discard)
	validate := utils.NewValidator()

	assignmentRepo := repository.NewAssignmentRepository(db)
	catalogueRepo := repository.NewCatalogueRepository(db)
	auditService := service.NewAuditService(repository.NewAuditLogRepository(db), logger)
	metricsService := service.NewMetricsService(assignmentRepo, redisClient, time.Minute, logger)
	rosterService := service.NewRosterService(repository.NewBondRepository(db), logger)
	catalogueService := service.NewCatalogueService(catalogueRepo, validate, auditService, logger)
	assignmentService := service.NewAssignmentService(
		assignmentRepo,
		catalogueRepo,
		repository.NewFreeTextRepository(db),
		validate,
		service.AssignmentHooks{
			Metrics: metricsService,
			Audit:   auditService,
			Events:  service.NewGradeEventPublisher(redisClient, "tempo-test", nil, logger),
		},
		service.AssignmentServiceConfig{},
		logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", SubmissionRateLimit: 100}, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, rosterService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(assignmentService, logger),
		ProgressHandler:   handler.NewProgressHandler(assignmentService, metricsService, rosterService, logger),
		CatalogueHandler:  handler.NewCatalogueHandler(catalogueService, logger),
		AuditHandler:      handler.NewAuditHandler(auditService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			if id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
				c.Locals("user_id", uint(id))
			}
			c.Locals("user_role", c.Get("X-Test-Role"))
			return c.Next()
		},
	})

	return testApp{app: app, db: db}
}

func (a testApp) createUser(t *testing.T, name, role string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: uuid.NewString() + "@example.com", Role: role}
	require.NoError(t, a.db.Create(&user).Error)
	return user
}

func (a testApp) bond(t *testing.T, professor, student models.User) {
	t.Helper()
	require.NoError(t, a.db.Create(&models.ProfessorStudentBond{
		ProfessorID:  professor.ID,
		StudentID:    student.ID,
		InstrumentID: 1,
		Active:       true,
	}).Error)
}

func (a testApp) do(t *testing.T, method, path string, user models.User, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user.ID > 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(user.ID), 10))
		req.Header.Set("X-Test-Role", user.Role)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func decodeEnvelope(t *testing.T, resp *http.Response, data interface{}) envelope {
	t.Helper()
	var body envelope
	decodeResponse(t, resp, &body)
	if data != nil && len(body.Data) > 0 {
		require.NoError(t, json.Unmarshal(body.Data, data))
	}
	return body
}

func choiceActivityPayload() map[string]interface{} {
	return map[string]interface{}{
		"name":          "Intervals",
		"modality":      "choice_based",
		"instrument_id": 1,
		"questions": []map[string]interface{}{
			{
				"title": "Distance from C to E",
				"answers": []map[string]interface{}{
					{"text": "Major third", "is_correct": true},
					{"text": "Minor third"},
				},
			},
			{
				"title": "Distance from C to G",
				"answers": []map[string]interface{}{
					{"text": "Perfect fifth", "is_correct": true},
					{"text": "Perfect fourth"},
				},
			},
		},
	}
}
