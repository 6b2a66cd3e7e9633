package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/service"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

// SubmissionHandler accepts student submissions for every modality.
type SubmissionHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the submission handler.
func NewSubmissionHandler(service service.AssignmentService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission routes to the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/choice", h.submitChoice)
	router.Post("/ordering", h.submitOrdering)
	router.Post("/free-text", h.submitFreeText)
}

func (h *SubmissionHandler) submitChoice(c *fiber.Ctx) error {
	var payload dto.ChoiceSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.SubmitChoice(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "grade submission")
	}

	return utils.SendSuccess(c, "submission graded", result)
}

func (h *SubmissionHandler) submitOrdering(c *fiber.Ctx) error {
	var payload dto.OrderingSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.SubmitOrdering(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "grade submission")
	}

	return utils.SendSuccess(c, "submission graded", result)
}

func (h *SubmissionHandler) submitFreeText(c *fiber.Ctx) error {
	var payload dto.FreeTextSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.SubmitFreeText(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "store response")
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return utils.SendSuccessWithStatus(c, status, "response submitted for review", result)
}
