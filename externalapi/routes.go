package externalapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drapcode/exchange-engine/externalapi/handlers"
)

type Handlers struct {
	ExternalHandler *handlers.ExternalHandler
}

func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	group := app.Group("/projects/:projectId/external-api")
	group.Post("/process", handlers.ExternalHandler.Process)
}
