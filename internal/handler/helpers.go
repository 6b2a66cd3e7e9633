package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/grading"
	"github.com/noah-isme/tempo-go-api/internal/middleware"
	"github.com/noah-isme/tempo-go-api/internal/service"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{service.ErrAlreadyAssigned, fiber.StatusConflict, "already_assigned", "activity already assigned to student"},
	{service.ErrConcurrentModification, fiber.StatusConflict, "concurrent_modification", "assignment was modified concurrently, retry"},
	{service.ErrAssignmentNotFound, fiber.StatusNotFound, "assignment_not_found", "assignment not found"},
	{service.ErrActivityNotFound, fiber.StatusNotFound, "activity_not_found", "activity not found"},
	{service.ErrQuestionNotFound, fiber.StatusNotFound, "question_not_found", "question not found"},
	{service.ErrStudentNotBonded, fiber.StatusForbidden, "forbidden", "student is not bonded to professor"},
	{service.ErrEmptySubmission, fiber.StatusUnprocessableEntity, "empty_submission", "submission contains no items"},
	{service.ErrEmptyResponse, fiber.StatusUnprocessableEntity, "empty_response", "response must contain plain text"},
	{service.ErrModalityMismatch, fiber.StatusUnprocessableEntity, "modality_mismatch", "submission does not match activity modality"},
	{service.ErrForeignQuestion, fiber.StatusUnprocessableEntity, "foreign_question", "selection references a question outside the activity"},
	{service.ErrInvalidCanonical, fiber.StatusUnprocessableEntity, "invalid_canonical", "activity has no canonical sequence"},
	{service.ErrInvalidActivity, fiber.StatusUnprocessableEntity, "invalid_activity", "activity content is incomplete"},
	{grading.ErrUnsupportedModality, fiber.StatusUnprocessableEntity, "unsupported_modality", "unsupported activity modality"},
}

// writeServiceError maps service failures to HTTP responses. Unknown errors are logged and hidden.
func writeServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]string, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
		return c.Status(fiber.StatusBadRequest).JSON(utils.APIResponse{
			Success: false,
			Message: "validation failed",
			Code:    "validation_failed",
			Details: details,
		})
	}

	for _, mapping := range serviceErrors {
		if errors.Is(err, mapping.target) {
			return utils.SendErrorCode(c, mapping.status, mapping.code, mapping.message)
		}
	}

	requestLogger(logger, c).Error().Err(err).Msg("failed to " + action)
	return utils.SendErrorCode(c, fiber.StatusInternalServerError, "internal_error", "failed to "+action)
}

func invalidPayload(c *fiber.Ctx) error {
	return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_payload", "invalid payload")
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func withRequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
