package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/service"
	"github.com/noah-isme/tempo-go-api/internal/utils"
)

// AuditHandler lists audit entries for professors.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditHandler constructs the audit handler.
func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches audit routes to the router group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("/audit", h.list)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_query", "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendErrorCode(c, fiber.StatusBadRequest, "invalid_query", "invalid page_size")
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	req := dto.AuditListRequest{
		Page:       page,
		PageSize:   pageSize,
		ActorID:    userIDFromContext(c),
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
	}

	result, err := h.service.List(withRequestContext(c), req)
	if err != nil {
		return writeServiceError(c, h.logger, err, "list audit entries")
	}

	return utils.OK(c, result.Items, "audit entries", result.Pagination)
}
