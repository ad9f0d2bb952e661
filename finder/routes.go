package finder

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drapcode/exchange-engine/finder/handlers"
)

type Handlers struct {
	FinderHandler *handlers.FinderHandler
}

// RegisterRoutes wires finder and generic list endpoints.
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	group := app.Group("/projects/:projectId/collections/:collectionName")

	group.Get("/finders/:filterUuid/items", handlers.FinderHandler.ProcessItems)
	group.Get("/items", handlers.FinderHandler.ListItems)
}
