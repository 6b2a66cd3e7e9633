package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/service"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

// AssignmentHandler exposes the professor side of the assignment lifecycle.
type AssignmentHandler struct {
	assignments service.AssignmentService
	roster      service.RosterService
	logger      zerolog.Logger
}

// NewAssignmentHandler constructs the professor assignment handler.
func NewAssignmentHandler(assignments service.AssignmentService, roster service.RosterService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		roster:      roster,
		logger:      logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches professor routes to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("/assignments", h.assign)
	router.Put("/assignments/evaluation", h.evaluate)
	router.Get("/reviews", h.pendingReviews)
	router.Get("/students", h.listStudents)
	router.Get("/students/:studentId/activities/:activityId/responses", h.freeTextResponses)
}

func (h *AssignmentHandler) assign(c *fiber.Ctx) error {
	var payload dto.AssignActivityRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	actor := actorFromContext(c)
	ctx := withRequestContext(c)
	if payload.StudentID > 0 {
		if err := h.roster.CanView(ctx, actor, payload.StudentID); err != nil {
			return writeServiceError(c, h.logger, err, "assign activity")
		}
	}

	assignment, err := h.assignments.AssignActivity(ctx, actor, payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "assign activity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity assigned", assignment)
}

func (h *AssignmentHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluateActivityRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	actor := actorFromContext(c)
	ctx := withRequestContext(c)
	if payload.StudentID > 0 {
		if err := h.roster.CanView(ctx, actor, payload.StudentID); err != nil {
			return writeServiceError(c, h.logger, err, "evaluate activity")
		}
	}

	assignment, err := h.assignments.EvaluateActivity(ctx, actor, payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "evaluate activity")
	}

	return utils.SendSuccess(c, "activity evaluated", assignment)
}

func (h *AssignmentHandler) pendingReviews(c *fiber.Ctx) error {
	reviews, err := h.assignments.GetPendingReviews(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "load pending reviews")
	}

	return utils.SendSuccess(c, "pending reviews", reviews)
}

func (h *AssignmentHandler) listStudents(c *fiber.Ctx) error {
	students, err := h.roster.ListStudents(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "load roster")
	}

	return utils.SendSuccess(c, "students", students)
}

func (h *AssignmentHandler) freeTextResponses(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_identifier", "invalid student identifier")
	}
	activityID, err := parseUintParam(c, "activityId")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_identifier", "invalid activity identifier")
	}

	ctx := withRequestContext(c)
	if err := h.roster.CanView(ctx, actorFromContext(c), studentID); err != nil {
		return writeServiceError(c, h.logger, err, "load responses")
	}

	responses, err := h.assignments.GetFreeTextResponses(ctx, studentID, activityID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "load responses")
	}

	return utils.SendSuccess(c, "responses", responses)
}
