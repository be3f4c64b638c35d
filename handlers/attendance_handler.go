package handlers

import (
	"errors"

	"github.com/academyhq/academy_backend/apperrors"
	"github.com/academyhq/academy_backend/database"
	"github.com/academyhq/academy_backend/middleware"
	"github.com/academyhq/academy_backend/models"
	"github.com/academyhq/academy_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceEntryRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Present   *bool  `json:"present" validate:"required"`
}

type SubmitAttendanceRequest struct {
	Date       string                   `json:"date" validate:"required"`
	Attendance []AttendanceEntryRequest `json:"attendance" validate:"required,min=1,dive"`
	Notes      string                   `json:"notes" validate:"required"`
}

// SubmitAttendance records today's session for a batch. One record per
// batch per day; there is no edit or delete afterwards.
func SubmitAttendance(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	batchID, err := uuid.Parse(c.Params("batchId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var req SubmitAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date"})
	}

	entries := make([]services.AttendanceEntryInput, 0, len(req.Attendance))
	for _, e := range req.Attendance {
		sid, err := uuid.Parse(e.StudentID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
		}
		entries = append(entries, services.AttendanceEntryInput{StudentID: sid, Present: *e.Present})
	}

	record, err := services.SubmitAttendance(database.DB, caller.AcademyID, caller.ID, batchID, date, entries, req.Notes)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetAttendanceForDate returns the record for one calendar day, as a
// zero- or one-element list.
func GetAttendanceForDate(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	batchID, err := uuid.Parse(c.Params("batchId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}
	date, err := parseDate(c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date"})
	}

	var record models.Attendance
	err = database.DB.
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Entries.Student").Preload("Teacher").
		First(&record, "batch_id = ? AND date = ? AND academy_id = ?", batchID, date, caller.AcademyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON([]models.Attendance{})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch attendance"})
	}
	return c.JSON([]models.Attendance{record})
}

// GetAttendanceHistory returns every recorded session for a batch in
// date order.
func GetAttendanceHistory(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	batchID, err := uuid.Parse(c.Params("batchId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var records []models.Attendance
	err = database.DB.
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Entries.Student").
		Where("batch_id = ? AND academy_id = ?", batchID, caller.AcademyID).
		Order("date ASC").Find(&records).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch attendance history"})
	}
	return c.JSON(records)
}

// GetAttendancePercentages reports each student's presence across the
// sessions recorded so far.
func GetAttendancePercentages(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	batchID, err := uuid.Parse(c.Params("batchId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	result, err := services.AttendancePercentages(database.DB, caller.AcademyID, batchID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to calculate attendance percentage"})
	}
	return c.JSON(result)
}
