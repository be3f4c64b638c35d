package routes

import (
	"github.com/academyhq/academy_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/register", handlers.RegisterAcademy)
	api.Post("/login", handlers.Login)
}
