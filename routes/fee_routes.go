package routes

import (
	"github.com/academyhq/academy_backend/handlers"
	"github.com/academyhq/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func FeeRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/fees", handlers.GetFees)
	admin.Get("/fees/filter", handlers.FilterFees)
	admin.Get("/fees/months", handlers.GetFeeMonths)
	admin.Get("/fees/student/:studentId", handlers.GetStudentFees)
	admin.Post("/fees", handlers.CreateFee)
	admin.Put("/fees/:id", handlers.UpdateFee)
	admin.Delete("/fees/:id", handlers.DeleteFee)
}
