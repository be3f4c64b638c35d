package routes

import (
	"github.com/academyhq/academy_backend/handlers"
	"github.com/academyhq/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func BatchRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/batches", handlers.CreateBatch)
	admin.Get("/batches", handlers.GetBatches)
	admin.Get("/batches/:id", handlers.GetBatch)
	admin.Put("/batches/:id", handlers.UpdateBatch)
	admin.Delete("/batches/:id", handlers.DeleteBatch)
	admin.Get("/batches/:id/session-dates", handlers.GetSessionDates)

	admin.Get("/generate-missing-fees", handlers.GenerateMissingFees)
}
