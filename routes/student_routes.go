package routes

import (
	"github.com/academyhq/academy_backend/handlers"
	"github.com/academyhq/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func StudentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/students", handlers.CreateStudent)
	admin.Get("/students", handlers.GetStudents)
	admin.Get("/students/:id", handlers.GetStudent)
	admin.Put("/students/:id", handlers.UpdateStudent)
	admin.Delete("/students/:id", handlers.DeleteStudent)
}
