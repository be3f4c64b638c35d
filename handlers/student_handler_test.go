package handlers

import (
	"testing"
	"time"

	"github.com/academyhq/academy_backend/middleware"
	"github.com/academyhq/academy_backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asCaller(caller middleware.Caller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("caller", caller)
		return c.Next()
	}
}

// Editing a student without supplying join_date must leave the stored
// join date alone; it is historical, not a mutable default.
func TestUpdateStudent_PreservesJoinDateWhenOmitted(t *testing.T) {
	db := openTestDB(t)

	academy := models.Academy{Name: "Rhythm Dance Academy", Email: "rhythm@example.com", Phone: "0700000001"}
	require.NoError(t, db.Create(&academy).Error)

	joined := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	student := models.Student{
		AcademyID:   academy.ID,
		Name:        "Meera",
		ParentName:  "Lakshmi",
		ParentPhone: "0711111111",
		JoinDate:    joined,
	}
	require.NoError(t, db.Create(&student).Error)

	app := fiber.New()
	app.Put("/students/:id", asCaller(middleware.Caller{
		ID: uuid.New(), Role: "admin", AcademyID: academy.ID,
	}), UpdateStudent)

	resp, err := app.Test(jsonRequest("PUT", "/students/"+student.ID.String(),
		`{"name":"Meera","parent_name":"Lakshmi","parent_phone":"0722222222"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reloaded models.Student
	require.NoError(t, db.First(&reloaded, "id = ?", student.ID).Error)
	assert.True(t, reloaded.JoinDate.Equal(joined),
		"join date changed to %s", reloaded.JoinDate)
	assert.Equal(t, "0722222222", reloaded.ParentPhone)

	// An explicit join_date still updates it.
	resp, err = app.Test(jsonRequest("PUT", "/students/"+student.ID.String(),
		`{"name":"Meera","parent_name":"Lakshmi","parent_phone":"0722222222","join_date":"2025-07-15"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&reloaded, "id = ?", student.ID).Error)
	assert.True(t, reloaded.JoinDate.Equal(time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)),
		"join date is %s", reloaded.JoinDate)
}
