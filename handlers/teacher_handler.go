package handlers

import (
	"errors"
	"strings"

	"github.com/academyhq/academy_backend/database"
	"github.com/academyhq/academy_backend/middleware"
	"github.com/academyhq/academy_backend/models"
	"github.com/academyhq/academy_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TeacherRequest struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"required,min=4"`
	Password        string   `json:"password" validate:"omitempty,min=6"`
	Phone           *string  `json:"phone" validate:"omitempty"`
	AssignedBatches []string `json:"assigned_batches" validate:"omitempty,dive,uuid"`
}

type ResetPasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// CreateTeacher stores the credentialed teacher and assigns the initial
// batches, keeping the batch-side teacher lists in sync through the
// shared join table.
func CreateTeacher(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var req TeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password is required"})
	}

	batchIDs, err := parseUUIDs(req.AssignedBatches)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	var teacher models.Teacher
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		teacher = models.Teacher{
			AcademyID: caller.AcademyID,
			Name:      req.Name,
			Username:  strings.ToLower(strings.TrimSpace(req.Username)),
			Password:  string(hashedPassword),
			Phone:     req.Phone,
		}
		if err := tx.Create(&teacher).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errConflict
			}
			return err
		}
		return services.SyncTeacherAssignments(tx, &teacher, batchIDs)
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists in this academy"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Teacher creation failed: " + err.Error()})
	}

	database.DB.Preload("AssignedBatches").First(&teacher, "id = ?", teacher.ID)
	return c.Status(fiber.StatusCreated).JSON(teacher)
}

// UpdateTeacher edits profile fields and reconciles batch assignments as
// a delta. Password changes only when one is supplied.
func UpdateTeacher(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	teacherID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	var req TeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	batchIDs, err := parseUUIDs(req.AssignedBatches)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var teacher models.Teacher
	if err := database.DB.Preload("AssignedBatches").
		First(&teacher, "id = ? AND academy_id = ?", teacherID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	var duplicate models.Teacher
	if err := database.DB.Where("username = ? AND academy_id = ? AND id <> ?", username, caller.AcademyID, teacherID).
		First(&duplicate).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":     req.Name,
			"username": username,
		}
		if req.Phone != nil {
			updates["phone"] = *req.Phone
		}
		if req.Password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			updates["password"] = string(hashed)
		}
		if err := tx.Model(&models.Teacher{}).Where("id = ?", teacher.ID).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errConflict
			}
			return err
		}
		return services.SyncTeacherAssignments(tx, &teacher, batchIDs)
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update teacher: " + err.Error()})
	}

	var updated models.Teacher
	database.DB.Preload("AssignedBatches").First(&updated, "id = ?", teacher.ID)
	return c.JSON(updated)
}

// DeleteTeacher cascades: the teacher is pulled from every batch teacher
// list before the row goes away.
func DeleteTeacher(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	teacherID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, "id = ? AND academy_id = ?", teacherID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := services.RemoveTeacherEverywhere(tx, &teacher); err != nil {
			return err
		}
		return tx.Delete(&teacher).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete teacher: " + err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Teacher deleted successfully"})
}

func GetTeachers(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var teachers []models.Teacher
	if err := database.DB.Preload("AssignedBatches").
		Where("academy_id = ?", caller.AcademyID).Find(&teachers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teachers"})
	}
	return c.JSON(teachers)
}

func GetTeacher(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	teacherID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	var teacher models.Teacher
	if err := database.DB.Preload("AssignedBatches").
		First(&teacher, "id = ? AND academy_id = ?", teacherID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}
	return c.JSON(teacher)
}

// ResetTeacherPassword verifies the old password before rehashing.
func ResetTeacherPassword(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	teacherID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, "id = ? AND academy_id = ?", teacherID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found."})
	}

	if bcrypt.CompareHashAndPassword([]byte(teacher.Password), []byte(req.OldPassword)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Old password is incorrect."})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}
	if err := database.DB.Model(&models.Teacher{}).Where("id = ?", teacher.ID).
		Update("password", string(hashed)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error while resetting password."})
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully."})
}

// GetMyBatches lists the batches the calling teacher is assigned to,
// rosters included.
func GetMyBatches(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var teacher models.Teacher
	if err := database.DB.
		Preload("AssignedBatches.Students").
		Preload("AssignedBatches.Teachers").
		First(&teacher, "id = ? AND academy_id = ?", caller.ID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}
	return c.JSON(teacher.AssignedBatches)
}
