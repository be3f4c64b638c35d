package routes

import (
	"github.com/academyhq/academy_backend/handlers"
	"github.com/academyhq/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

// Teachers record attendance; both roles can read it back.
func AttendanceRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	teacher := api.Group("/teacher", middleware.Protected(), middleware.TeacherRequired())
	teacher.Post("/attendance/:batchId", handlers.SubmitAttendance)
	teacher.Get("/attendance/:batchId/:date", handlers.GetAttendanceForDate)
	teacher.Get("/attendance-all/:batchId", handlers.GetAttendanceHistory)
	teacher.Get("/attendance-percentage/:batchId", handlers.GetAttendancePercentages)

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/attendance/:batchId/:date", handlers.GetAttendanceForDate)
	admin.Get("/attendance-all/:batchId", handlers.GetAttendanceHistory)
	admin.Get("/attendance-percentage/:batchId", handlers.GetAttendancePercentages)
}
