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

type StudentRequest struct {
	Name        string   `json:"name" validate:"required"`
	ParentName  string   `json:"parent_name" validate:"required"`
	ParentPhone string   `json:"parent_phone" validate:"required"`
	ParentEmail *string  `json:"parent_email" validate:"omitempty,email"`
	DOB         *string  `json:"dob" validate:"omitempty"`
	Photo       *string  `json:"photo" validate:"omitempty,url"`
	JoinDate    *string  `json:"join_date" validate:"omitempty"`
	BatchIDs    []string `json:"batches" validate:"omitempty,dive,uuid"`
}

type studentInput struct {
	name, parentName, parentPhone string
	dob                           *time.Time
	joinDate                      *time.Time
	batchIDs                      []uuid.UUID
}

func parseStudentRequest(c *fiber.Ctx, req *StudentRequest) (*studentInput, error) {
	if err := c.BodyParser(req); err != nil {
		return nil, errors.New("Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	in := &studentInput{
		name:        strings.TrimSpace(req.Name),
		parentName:  strings.TrimSpace(req.ParentName),
		parentPhone: strings.TrimSpace(req.ParentPhone),
	}

	if req.DOB != nil && *req.DOB != "" {
		dob, err := parseDate(*req.DOB)
		if err != nil {
			return nil, errors.New("Invalid dob")
		}
		in.dob = &dob
	}
	if req.JoinDate != nil && *req.JoinDate != "" {
		jd, err := parseDate(*req.JoinDate)
		if err != nil {
			return nil, errors.New("Invalid join_date")
		}
		in.joinDate = &jd
	}

	batchIDs, err := parseUUIDs(req.BatchIDs)
	if err != nil {
		return nil, errors.New("Invalid batch id")
	}
	in.batchIDs = batchIDs
	return in, nil
}

// duplicateStudentExists checks the (name, parentName, dob) identity
// within the academy, optionally excluding one student id.
func duplicateStudentExists(academyID uuid.UUID, in *studentInput, exclude *uuid.UUID) (bool, error) {
	q := database.DB.Where("name = ? AND parent_name = ? AND academy_id = ?", in.name, in.parentName, academyID)
	if in.dob != nil {
		q = q.Where("dob = ?", *in.dob)
	} else {
		q = q.Where("dob IS NULL")
	}
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var existing models.Student
	err := q.First(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// CreateStudent stores the student and, when initial batches are given,
// enrolls them and bills every month those batches span.
func CreateStudent(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var req StudentRequest
	in, err := parseStudentRequest(c, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	dup, err := duplicateStudentExists(caller.AcademyID, in, nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check for duplicates"})
	}
	if dup {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Student already exists with the same details in this academy"})
	}

	joinDate := services.NormalizeDate(time.Now())
	if in.joinDate != nil {
		joinDate = *in.joinDate
	}

	var student models.Student
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		student = models.Student{
			AcademyID:   caller.AcademyID,
			Name:        in.name,
			ParentName:  in.parentName,
			ParentPhone: in.parentPhone,
			ParentEmail: req.ParentEmail,
			DOB:         in.dob,
			Photo:       req.Photo,
			JoinDate:    joinDate,
		}
		if err := tx.Create(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errConflict
			}
			return err
		}

		if err := services.AttachStudentBatches(tx, &student, in.batchIDs); err != nil {
			return err
		}
		return services.SyncFeesOnStudentBatchesChange(tx, caller.AcademyID, student.ID, in.batchIDs, nil)
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Student already exists with the same details in this academy"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Student creation failed: " + err.Error()})
	}

	database.DB.Preload("Batches").First(&student, "id = ?", student.ID)
	return c.Status(fiber.StatusCreated).JSON(student)
}

// UpdateStudent reconciles the student's batch membership as a delta:
// fees are purged for batches they left and created for batches they
// joined, leaving everything else on the ledger untouched.
func UpdateStudent(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var req StudentRequest
	in, err := parseStudentRequest(c, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var student models.Student
	if err := database.DB.Preload("Batches").
		First(&student, "id = ? AND academy_id = ?", studentID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	dup, err := duplicateStudentExists(caller.AcademyID, in, &studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check for duplicates"})
	}
	if dup {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Another student already exists with the same details in this academy"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":         in.name,
			"parent_name":  in.parentName,
			"parent_phone": in.parentPhone,
			"dob":          in.dob,
		}
		// The join date is historical; only overwrite it when the edit
		// actually carries one.
		if in.joinDate != nil {
			updates["join_date"] = *in.joinDate
		}
		if req.ParentEmail != nil {
			updates["parent_email"] = *req.ParentEmail
		}
		if req.Photo != nil {
			updates["photo"] = *req.Photo
		}
		if err := tx.Model(&models.Student{}).Where("id = ?", student.ID).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errConflict
			}
			return err
		}

		added, removed, err := services.SyncStudentBatches(tx, &student, in.batchIDs)
		if err != nil {
			return err
		}
		return services.SyncFeesOnStudentBatchesChange(tx, caller.AcademyID, student.ID, added, removed)
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Another student already exists with the same details in this academy"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student: " + err.Error()})
	}

	var updated models.Student
	database.DB.Preload("Batches").First(&updated, "id = ?", student.ID)
	return c.JSON(updated)
}

// DeleteStudent cascades: the student leaves every roster and all their
// fee records are purged.
func DeleteStudent(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var student models.Student
	if err := database.DB.First(&student, "id = ? AND academy_id = ?", studentID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := services.RemoveStudentEverywhere(tx, &student); err != nil {
			return err
		}
		if err := services.PurgeFeesForStudent(tx, caller.AcademyID, student.ID); err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete student: " + err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Student and associated fee records deleted successfully"})
}

func GetStudents(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var students []models.Student
	if err := database.DB.Preload("Batches").
		Where("academy_id = ?", caller.AcademyID).Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}
	return c.JSON(students)
}

func GetStudent(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var student models.Student
	if err := database.DB.Preload("Batches").
		First(&student, "id = ? AND academy_id = ?", studentID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}
	return c.JSON(student)
}
