package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/academyhq/academy_backend/database"
	"github.com/academyhq/academy_backend/middleware"
	"github.com/academyhq/academy_backend/models"
	"github.com/academyhq/academy_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateFeeRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	BatchID   string  `json:"batch_id" validate:"required,uuid"`
	Month     string  `json:"month" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Mode      string  `json:"mode" validate:"omitempty,oneof=cash UPI card other"`
	Remarks   *string `json:"remarks"`
}

type UpdateFeeRequest struct {
	Amount  *float64 `json:"amount" validate:"omitempty,gt=0"`
	Status  *string  `json:"status" validate:"omitempty,oneof=paid pending"`
	PaidOn  *string  `json:"paid_on"`
	Mode    *string  `json:"mode" validate:"omitempty,oneof=cash UPI card other"`
	Remarks *string  `json:"remarks"`
}

func GetFees(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var fees []models.Fee
	if err := database.DB.Preload("Student").Preload("Batch").
		Where("academy_id = ?", caller.AcademyID).Find(&fees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch fees"})
	}
	return c.JSON(fees)
}

// FilterFees narrows the ledger by status, batch and month query params.
func FilterFees(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	q := database.DB.Preload("Student").Preload("Batch").Where("academy_id = ?", caller.AcademyID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if batch := c.Query("batch"); batch != "" {
		batchID, err := uuid.Parse(batch)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
		}
		q = q.Where("batch_id = ?", batchID)
	}
	if month := c.Query("month"); month != "" {
		q = q.Where("month = ?", month)
	}

	var fees []models.Fee
	if err := q.Find(&fees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch fees"})
	}
	return c.JSON(fees)
}

// GetFeeMonths lists the distinct month labels present in the ledger,
// for dropdowns.
func GetFeeMonths(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var months []string
	if err := database.DB.Model(&models.Fee{}).Distinct("month").
		Where("academy_id = ?", caller.AcademyID).Pluck("month", &months).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch months"})
	}
	return c.JSON(months)
}

func GetStudentFees(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var fees []models.Fee
	if err := database.DB.Preload("Batch").
		Where("student_id = ? AND academy_id = ?", studentID, caller.AcademyID).
		Order("paid_on DESC NULLS LAST").Find(&fees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch fees"})
	}
	if len(fees) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No fee records found for this student"})
	}
	return c.JSON(fees)
}

// CreateFee adds a single manual charge. The month must be one the batch
// actually spans and the student must be on the roster; the triple must
// not exist yet.
func CreateFee(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var req CreateFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	studentID, _ := uuid.Parse(req.StudentID)
	batchID, _ := uuid.Parse(req.BatchID)

	var batch models.Batch
	if err := database.DB.Preload("Students").
		First(&batch, "id = ? AND academy_id = ?", batchID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Batch not found in this academy"})
	}

	month := strings.TrimSpace(req.Month)
	if _, err := services.MonthStart(month); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid month format"})
	}
	inRange := false
	for _, label := range services.MonthLabels(batch.StartDate, batch.EndDate) {
		if label == month {
			inRange = true
			break
		}
	}
	if !inRange {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Month is outside the batch date range"})
	}

	onRoster := false
	for _, s := range batch.Students {
		if s.ID == studentID {
			onRoster = true
			break
		}
	}
	if !onRoster {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Student not in batch"})
	}

	mode := req.Mode
	if mode == "" {
		mode = "cash"
	}
	fee := models.Fee{
		AcademyID: caller.AcademyID,
		StudentID: studentID,
		BatchID:   batchID,
		Month:     month,
		Amount:    req.Amount,
		Status:    models.FeeStatusPending,
		Mode:      mode,
		Remarks:   req.Remarks,
	}
	if err := database.DB.Create(&fee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Fee record already exists for this student, batch, and month"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create fee"})
	}
	return c.Status(fiber.StatusCreated).JSON(fee)
}

// UpdateFee edits amount, status, paidOn, mode and remarks only — the
// (student, batch, month) identity of a charge never changes. Marking a
// fee paid stamps paidOn (never in the future) and kicks off receipt
// generation in the background.
func UpdateFee(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	feeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee id"})
	}

	var req UpdateFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var fee models.Fee
	if err := database.DB.First(&fee, "id = ? AND academy_id = ?", feeID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fee not found in this academy"})
	}

	updates := map[string]any{}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Mode != nil {
		updates["mode"] = *req.Mode
	}
	if req.Remarks != nil {
		updates["remarks"] = *req.Remarks
	}

	becamePaid := false
	if req.Status != nil {
		status := strings.ToLower(*req.Status)
		updates["status"] = status

		if status == models.FeeStatusPaid {
			paidOn := time.Now()
			if req.PaidOn != nil && *req.PaidOn != "" {
				parsed, err := parseDate(*req.PaidOn)
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid paidOn date"})
				}
				paidOn = parsed
			}
			if paidOn.After(time.Now()) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "paidOn date cannot be in the future"})
			}
			updates["paid_on"] = paidOn
			becamePaid = fee.Status != models.FeeStatusPaid
		} else {
			updates["paid_on"] = nil
		}
	} else if req.PaidOn != nil {
		parsed, err := parseDate(*req.PaidOn)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid paidOn date"})
		}
		if parsed.After(time.Now()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "paidOn date cannot be in the future"})
		}
		updates["paid_on"] = parsed
	}

	if err := database.DB.Model(&models.Fee{}).Where("id = ?", fee.ID).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update fee"})
	}

	if becamePaid {
		go services.GenerateFeeReceipt(fee.ID)
	}

	var updated models.Fee
	database.DB.First(&updated, "id = ?", fee.ID)
	return c.JSON(updated)
}

func DeleteFee(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	feeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee id"})
	}

	res := database.DB.Where("id = ? AND academy_id = ?", feeID, caller.AcademyID).Delete(&models.Fee{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete fee"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fee not found in this academy"})
	}
	return c.JSON(fiber.Map{"message": "Fee record deleted successfully"})
}
