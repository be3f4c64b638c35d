package routes

import (
	"github.com/academyhq/academy_backend/handlers"
	"github.com/academyhq/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func TeacherRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/teachers", handlers.CreateTeacher)
	admin.Get("/teachers", handlers.GetTeachers)
	admin.Get("/teachers/:id", handlers.GetTeacher)
	admin.Put("/teachers/:id", handlers.UpdateTeacher)
	admin.Delete("/teachers/:id", handlers.DeleteTeacher)
	admin.Put("/teachers/reset-password/:id", handlers.ResetTeacherPassword)

	teacher := api.Group("/teacher", middleware.Protected(), middleware.TeacherRequired())
	teacher.Get("/my-batches", handlers.GetMyBatches)
	teacher.Get("/batches/:id/session-dates", handlers.GetSessionDates)
}
