package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/service"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

// CatalogueHandler serves activity authoring and student-facing activity views.
type CatalogueHandler struct {
	service service.CatalogueService
	logger  zerolog.Logger
}

// NewCatalogueHandler constructs the catalogue handler.
func NewCatalogueHandler(service service.CatalogueService, logger zerolog.Logger) *CatalogueHandler {
	return &CatalogueHandler{
		service: service,
		logger:  logger.With().Str("component", "catalogue_handler").Logger(),
	}
}

// RegisterAuthoring attaches professor-only catalogue routes.
func (h *CatalogueHandler) RegisterAuthoring(router fiber.Router) {
	router.Post("/activities", h.create)
}

// Register attaches read-only catalogue routes.
func (h *CatalogueHandler) Register(router fiber.Router) {
	router.Get("/activities/:id", h.show)
	router.Get("/activities/:id/presentation", h.presentation)
}

func (h *CatalogueHandler) create(c *fiber.Ctx) error {
	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	activity, err := h.service.CreateActivity(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "create activity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", activity)
}

func (h *CatalogueHandler) show(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_identifier", "invalid identifier")
	}

	activity, err := h.service.GetActivityForStudent(withRequestContext(c), id)
	if err != nil {
		return writeServiceError(c, h.logger, err, "load activity")
	}

	return utils.SendSuccess(c, "activity", activity)
}

func (h *CatalogueHandler) presentation(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_identifier", "invalid identifier")
	}

	presentation, err := h.service.GetOrderingPresentation(withRequestContext(c), id)
	if err != nil {
		return writeServiceError(c, h.logger, err, "load presentation")
	}

	return utils.SendSuccess(c, "presentation", presentation)
}
