package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/drapcode/exchange-engine/externalapi/errors"
	"github.com/drapcode/exchange-engine/externalapi/models"
	"github.com/drapcode/exchange-engine/externalapi/services"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"github.com/drapcode/exchange-engine/internal/types"
)

type ExternalHandler struct {
	service services.Service
}

func NewExternalHandler(service services.Service) *ExternalHandler {
	return &ExternalHandler{service: service}
}

// Process relays a builder-described request to a third-party API and
// returns its status and body.
// Endpoint: POST /projects/:projectId/external-api/process
func (h *ExternalHandler) Process(c *fiber.Ctx) error {
	if !strings.Contains(c.Get(types.HeaderContentType), fiber.MIMEApplicationJSON) {
		return errors.HandleValidationError(c, errors.ErrInvalidContentType.Error())
	}

	var req models.Request
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, "Invalid request body")
	}

	ctx := log.WithProjectID(c.UserContext(), c.Params("projectId"))
	res, err := h.service.Process(ctx, req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	c.Status(res.Status)
	if text, ok := res.Data.(string); ok {
		return c.SendString(text)
	}
	return c.JSON(res.Data)
}
