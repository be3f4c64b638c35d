package services

import (
	"github.com/academyhq/academy_backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The fee rows for a batch are exactly one pending/paid row per
// (student, batch, month) for every month the batch spans and every
// student on the roster, amount = the batch fee. Every mutation below
// repairs toward that shape and leaves unaffected rows untouched.

// BuildFeeRows expands the cross product of students and month labels
// into pending fee rows.
func BuildFeeRows(academyID, batchID uuid.UUID, studentIDs []uuid.UUID, months []string, amount float64) []models.Fee {
	rows := make([]models.Fee, 0, len(studentIDs)*len(months))
	for _, sid := range studentIDs {
		for _, month := range months {
			rows = append(rows, models.Fee{
				AcademyID: academyID,
				StudentID: sid,
				BatchID:   batchID,
				Month:     month,
				Amount:    amount,
				Status:    models.FeeStatusPending,
			})
		}
	}
	return rows
}

// insertFees writes rows, silently skipping triples that already exist.
// The unique index on (academy, student, batch, month) makes the skip
// race-free. Returns how many rows were actually inserted.
func insertFees(tx *gorm.DB, rows []models.Fee) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	return res.RowsAffected, res.Error
}

// SyncFeesOnBatchCreate charges the initial roster for every month the
// batch spans.
func SyncFeesOnBatchCreate(tx *gorm.DB, batch *models.Batch, studentIDs []uuid.UUID) error {
	months := MonthLabels(batch.StartDate, batch.EndDate)
	_, err := insertFees(tx, BuildFeeRows(batch.AcademyID, batch.ID, studentIDs, months, batch.Fee))
	return err
}

// SyncFeesOnBatchUpdate reconciles the ledger after a batch edit.
//
// When the fee amount or the date range changed the billing basis is
// gone: every row for the batch is dropped and the full cross product is
// recreated for the new roster, losing any manually edited status/paidOn.
// That loss is deliberate. A roster-only edit touches just the rows of
// students who actually left or joined.
func SyncFeesOnBatchUpdate(tx *gorm.DB, batch *models.Batch, rosterIDs, addedStudents, removedStudents []uuid.UUID, rebuild bool) error {
	months := MonthLabels(batch.StartDate, batch.EndDate)

	if rebuild {
		if err := DeleteFeesForBatch(tx, batch.AcademyID, batch.ID); err != nil {
			return err
		}
		_, err := insertFees(tx, BuildFeeRows(batch.AcademyID, batch.ID, rosterIDs, months, batch.Fee))
		return err
	}

	if len(removedStudents) > 0 {
		if err := tx.Where("batch_id = ? AND student_id IN ? AND academy_id = ?",
			batch.ID, removedStudents, batch.AcademyID).Delete(&models.Fee{}).Error; err != nil {
			return err
		}
	}
	_, err := insertFees(tx, BuildFeeRows(batch.AcademyID, batch.ID, addedStudents, months, batch.Fee))
	return err
}

// DeleteFeesForBatch removes every fee row referencing the batch.
func DeleteFeesForBatch(tx *gorm.DB, academyID, batchID uuid.UUID) error {
	return tx.Where("batch_id = ? AND academy_id = ?", batchID, academyID).Delete(&models.Fee{}).Error
}

// SyncFeesOnStudentBatchesChange applies a student-side batch edit:
// fees are purged for the batches the student left and created for the
// months of the batches they joined.
func SyncFeesOnStudentBatchesChange(tx *gorm.DB, academyID, studentID uuid.UUID, addedBatchIDs, removedBatchIDs []uuid.UUID) error {
	if len(removedBatchIDs) > 0 {
		if err := tx.Where("student_id = ? AND batch_id IN ? AND academy_id = ?",
			studentID, removedBatchIDs, academyID).Delete(&models.Fee{}).Error; err != nil {
			return err
		}
	}

	if len(addedBatchIDs) == 0 {
		return nil
	}
	var batches []models.Batch
	if err := tx.Where("id IN ? AND academy_id = ?", addedBatchIDs, academyID).Find(&batches).Error; err != nil {
		return err
	}
	for _, batch := range batches {
		months := MonthLabels(batch.StartDate, batch.EndDate)
		if _, err := insertFees(tx, BuildFeeRows(academyID, batch.ID, []uuid.UUID{studentID}, months, batch.Fee)); err != nil {
			return err
		}
	}
	return nil
}

// PurgeFeesForStudent removes every fee row for a deleted student.
func PurgeFeesForStudent(tx *gorm.DB, academyID, studentID uuid.UUID) error {
	return tx.Where("student_id = ? AND academy_id = ?", studentID, academyID).Delete(&models.Fee{}).Error
}

// GenerateMissingFees is the repair pass: it rebuilds the expected cross
// product for every batch in the academy and inserts only the triples
// that are absent. Running it right after a clean batch creation inserts
// nothing. Returns the number of rows created.
func GenerateMissingFees(db *gorm.DB, academyID uuid.UUID) (int64, error) {
	var batches []models.Batch
	if err := db.Preload("Students").Where("academy_id = ?", academyID).Find(&batches).Error; err != nil {
		return 0, err
	}

	var created int64
	for i := range batches {
		batch := &batches[i]
		months := MonthLabels(batch.StartDate, batch.EndDate)
		n, err := insertFees(db, BuildFeeRows(academyID, batch.ID, batch.StudentIDs(), months, batch.Fee))
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}
