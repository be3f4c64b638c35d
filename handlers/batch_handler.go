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
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type BatchRequest struct {
	Name       string   `json:"name" validate:"required"`
	StartDate  string   `json:"start_date" validate:"required"`
	EndDate    string   `json:"end_date" validate:"required"`
	Days       []string `json:"days" validate:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	TimeSlot   string   `json:"time_slot"`
	Location   string   `json:"location"`
	Fee        float64  `json:"fee" validate:"required,gt=0"`
	TeacherIDs []string `json:"teachers" validate:"omitempty,dive,uuid"`
	StudentIDs []string `json:"students" validate:"omitempty,dive,uuid"`
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return services.NormalizeDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return services.NormalizeDate(t), nil
}

func parseUUIDs(in []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

type batchInput struct {
	name       string
	start, end time.Time
	teacherIDs []uuid.UUID
	studentIDs []uuid.UUID
}

func parseBatchRequest(c *fiber.Ctx, req *BatchRequest) (*batchInput, error) {
	if err := c.BodyParser(req); err != nil {
		return nil, errors.New("Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, errors.New("Invalid start_date")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, errors.New("Invalid end_date")
	}
	if start.After(end) {
		return nil, errors.New("start_date must not be after end_date")
	}

	teacherIDs, err := parseUUIDs(req.TeacherIDs)
	if err != nil {
		return nil, errors.New("Invalid teacher id")
	}
	studentIDs, err := parseUUIDs(req.StudentIDs)
	if err != nil {
		return nil, errors.New("Invalid student id")
	}

	return &batchInput{
		name:       strings.TrimSpace(req.Name),
		start:      start,
		end:        end,
		teacherIDs: teacherIDs,
		studentIDs: studentIDs,
	}, nil
}

// CreateBatch stores the batch, wires the roster back-references and
// bills the initial roster for every month the batch spans, all in one
// transaction.
func CreateBatch(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var req BatchRequest
	in, err := parseBatchRequest(c, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var batch models.Batch
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Batch
		if err := tx.Where("name = ? AND academy_id = ?", in.name, caller.AcademyID).First(&existing).Error; err == nil {
			return errConflict
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		batch = models.Batch{
			AcademyID: caller.AcademyID,
			Name:      in.name,
			StartDate: in.start,
			EndDate:   in.end,
			Days:      req.Days,
			TimeSlot:  req.TimeSlot,
			Location:  req.Location,
			Fee:       req.Fee,
		}
		if err := tx.Create(&batch).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errConflict
			}
			return err
		}

		if err := services.AttachBatchTeachers(tx, &batch, in.teacherIDs); err != nil {
			return err
		}
		studentIDs, err := services.FilterAcademyStudentIDs(tx, caller.AcademyID, in.studentIDs)
		if err != nil {
			return err
		}
		if err := services.AttachBatchStudents(tx, &batch, studentIDs); err != nil {
			return err
		}
		return services.SyncFeesOnBatchCreate(tx, &batch, studentIDs)
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Batch with this name already exists in your academy"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create batch: " + err.Error()})
	}

	database.DB.Preload("Teachers").Preload("Students").First(&batch, "id = ?", batch.ID)
	return c.Status(fiber.StatusCreated).JSON(batch)
}

var errConflict = errors.New("conflict")

// UpdateBatch applies a batch edit. The roster is reconciled as a delta
// against the previous lists; the fee ledger is either patched for the
// roster delta (roster-only edit) or rebuilt from scratch when the fee
// amount or the date range changed, since those invalidate every
// previously issued charge.
func UpdateBatch(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var req BatchRequest
	in, err := parseBatchRequest(c, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var batch models.Batch
	if err := database.DB.Preload("Teachers").Preload("Students").
		First(&batch, "id = ? AND academy_id = ?", batchID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Batch not found"})
	}

	var duplicate models.Batch
	if err := database.DB.Where("name = ? AND academy_id = ? AND id <> ?", in.name, caller.AcademyID, batchID).
		First(&duplicate).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Another batch with this name already exists in your academy"})
	}

	rebuild := batch.Fee != req.Fee ||
		!services.NormalizeDate(batch.StartDate).Equal(in.start) ||
		!services.NormalizeDate(batch.EndDate).Equal(in.end)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Batch{}).Where("id = ?", batch.ID).Updates(map[string]any{
			"name":       in.name,
			"start_date": in.start,
			"end_date":   in.end,
			"days":       pq.StringArray(req.Days),
			"time_slot":  req.TimeSlot,
			"location":   req.Location,
			"fee":        req.Fee,
		}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errConflict
			}
			return err
		}

		studentIDs, err := services.FilterAcademyStudentIDs(tx, caller.AcademyID, in.studentIDs)
		if err != nil {
			return err
		}
		addedStudents, removedStudents, err := services.SyncBatchRoster(tx, &batch, in.teacherIDs, studentIDs)
		if err != nil {
			return err
		}

		updated := batch
		updated.StartDate = in.start
		updated.EndDate = in.end
		updated.Fee = req.Fee
		return services.SyncFeesOnBatchUpdate(tx, &updated, studentIDs, addedStudents, removedStudents, rebuild)
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Another batch with this name already exists in your academy"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update batch: " + err.Error()})
	}

	var updated models.Batch
	database.DB.Preload("Teachers").Preload("Students").First(&updated, "id = ?", batch.ID)
	return c.JSON(updated)
}

// DeleteBatch cascades: roster back-references are cleared and every fee
// record referencing the batch is removed alongside the batch itself.
func DeleteBatch(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var batch models.Batch
	if err := database.DB.First(&batch, "id = ? AND academy_id = ?", batchID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Batch not found"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := services.ClearBatchRoster(tx, &batch); err != nil {
			return err
		}
		if err := services.DeleteFeesForBatch(tx, caller.AcademyID, batch.ID); err != nil {
			return err
		}
		return tx.Delete(&batch).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete batch: " + err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Batch and related fee records deleted"})
}

func GetBatches(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	var batches []models.Batch
	if err := database.DB.Preload("Teachers").Preload("Students").
		Where("academy_id = ?", caller.AcademyID).Find(&batches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch batches"})
	}
	return c.JSON(batches)
}

func GetBatch(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var batch models.Batch
	if err := database.DB.Preload("Teachers").Preload("Students").
		First(&batch, "id = ? AND academy_id = ?", batchID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Batch not found"})
	}
	return c.JSON(batch)
}

// GetSessionDates projects the expected session grid for a batch up to
// today. Read-only; recording attendance is what actually creates a
// session.
func GetSessionDates(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var batch models.Batch
	if err := database.DB.First(&batch, "id = ? AND academy_id = ?", batchID, caller.AcademyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Batch not found"})
	}

	dates := services.SessionDates(batch.StartDate, batch.EndDate, batch.Days, time.Now())
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	return c.JSON(fiber.Map{"session_dates": out})
}

// GenerateMissingFees is the operator repair pass: it re-runs the fee
// cross product for every batch in the academy and fills only the gaps.
func GenerateMissingFees(c *fiber.Ctx) error {
	caller := middleware.CurrentCaller(c)

	created, err := services.GenerateMissingFees(database.DB, caller.AcademyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate fees: " + err.Error()})
	}
	return c.JSON(fiber.Map{"message": "missing fee records created", "created": created})
}
