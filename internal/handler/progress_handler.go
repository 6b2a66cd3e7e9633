package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/service"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

// ProgressHandler serves a student's assignments and metrics to the student or a bonded professor.
type ProgressHandler struct {
	assignments service.AssignmentService
	metrics     service.MetricsService
	roster      service.RosterService
	logger      zerolog.Logger
}

// NewProgressHandler constructs the progress handler.
func NewProgressHandler(assignments service.AssignmentService, metrics service.MetricsService, roster service.RosterService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		assignments: assignments,
		metrics:     metrics,
		roster:      roster,
		logger:      logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches progress routes to the router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/:studentId/activities", h.authorize, h.activities)
	router.Get("/:studentId/activities/completed", h.authorize, h.completed)
	router.Get("/:studentId/metrics", h.authorize, h.studentMetrics)
}

func (h *ProgressHandler) authorize(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_identifier", "invalid student identifier")
	}
	if err := h.roster.CanView(withRequestContext(c), actorFromContext(c), studentID); err != nil {
		return writeServiceError(c, h.logger, err, "authorize progress access")
	}
	c.Locals("student_id", studentID)
	return c.Next()
}

func (h *ProgressHandler) activities(c *fiber.Ctx) error {
	items, err := h.assignments.GetActivitiesForStudent(withRequestContext(c), studentIDFromLocals(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "load activities")
	}
	return utils.SendSuccess(c, "activities", items)
}

func (h *ProgressHandler) completed(c *fiber.Ctx) error {
	items, err := h.assignments.GetCompletedActivities(withRequestContext(c), studentIDFromLocals(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "load completed activities")
	}
	return utils.SendSuccess(c, "completed activities", items)
}

func (h *ProgressHandler) studentMetrics(c *fiber.Ctx) error {
	metrics, err := h.metrics.GetMetrics(withRequestContext(c), studentIDFromLocals(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "load metrics")
	}
	return utils.SendSuccess(c, "metrics", metrics)
}

func studentIDFromLocals(c *fiber.Ctx) uint {
	if id, ok := c.Locals("student_id").(uint); ok {
		return id
	}
	return 0
}
