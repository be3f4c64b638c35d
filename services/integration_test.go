package services

import (
	"os"
	"testing"
	"time"

	"github.com/academyhq/academy_backend/apperrors"
	"github.com/academyhq/academy_backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openTestDB connects to the database named by TEST_DATABASE_URL and
// starts every test from empty tables. Tests using it are skipped when
// the variable is unset so the pure-logic suite still runs everywhere.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Academy{},
		&models.Admin{},
		&models.Teacher{},
		&models.Student{},
		&models.Batch{},
		&models.Fee{},
		&models.Attendance{},
		&models.AttendanceEntry{},
	))

	for _, table := range []string{
		"attendance_entries", "attendances", "fees",
		"batch_students", "batch_teachers", "batches",
		"students", "teachers", "admins", "academies",
	} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	return db
}

func seedAcademy(t *testing.T, db *gorm.DB, name string) models.Academy {
	t.Helper()
	academy := models.Academy{Name: name, Email: name + "@example.com", Phone: "0700000000"}
	require.NoError(t, db.Create(&academy).Error)
	return academy
}

func seedTeacher(t *testing.T, db *gorm.DB, academyID uuid.UUID, username string) models.Teacher {
	t.Helper()
	teacher := models.Teacher{AcademyID: academyID, Name: "Teacher " + username, Username: username, Password: "x"}
	require.NoError(t, db.Create(&teacher).Error)
	return teacher
}

func seedStudent(t *testing.T, db *gorm.DB, academyID uuid.UUID, name string) models.Student {
	t.Helper()
	student := models.Student{
		AcademyID:   academyID,
		Name:        name,
		ParentName:  "Parent of " + name,
		ParentPhone: "0711111111",
		JoinDate:    date(2025, time.June, 1),
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func seedBatch(t *testing.T, db *gorm.DB, academyID uuid.UUID, name string) models.Batch {
	t.Helper()
	batch := models.Batch{
		AcademyID: academyID,
		Name:      name,
		StartDate: date(2025, time.June, 1),
		EndDate:   date(2025, time.August, 31),
		Days:      []string{"Monday", "Wednesday"},
		Fee:       500,
	}
	require.NoError(t, db.Create(&batch).Error)
	return batch
}

func TestSubmitAttendance_SecondSubmissionSameDayConflicts(t *testing.T) {
	db := openTestDB(t)

	academy := seedAcademy(t, db, "Rhythm Dance Academy")
	teacher := seedTeacher(t, db, academy.ID, "asha")
	student := seedStudent(t, db, academy.ID, "Meera")
	batch := seedBatch(t, db, academy.ID, "Kathak Evening")
	require.NoError(t, db.Model(&batch).Association("Teachers").Append(&teacher))
	require.NoError(t, db.Model(&batch).Association("Students").Append(&student))

	entries := []AttendanceEntryInput{{StudentID: student.ID, Present: true}}
	day := date(2025, time.June, 2)

	record, err := SubmitAttendance(db, academy.ID, teacher.ID, batch.ID, day, entries, "first session")
	require.NoError(t, err)
	require.NotNil(t, record)

	_, err = SubmitAttendance(db, academy.ID, teacher.ID, batch.ID, day, entries, "resubmitted")
	require.Error(t, err)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindConflict, kind)

	var count int64
	require.NoError(t, db.Model(&models.Attendance{}).Where("batch_id = ?", batch.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmitAttendance_BatchInvisibleAcrossAcademies(t *testing.T) {
	db := openTestDB(t)

	academyA := seedAcademy(t, db, "Academy A")
	academyB := seedAcademy(t, db, "Academy B")
	batchA := seedBatch(t, db, academyA.ID, "Salsa Morning")
	teacherB := seedTeacher(t, db, academyB.ID, "intruder")

	_, err := SubmitAttendance(db, academyB.ID, teacherB.ID, batchA.ID,
		date(2025, time.June, 2), nil, "notes")
	require.Error(t, err)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindNotFound, kind)
}

func TestFilterAcademyStudentIDs_DropsForeignAndUnknownIDs(t *testing.T) {
	db := openTestDB(t)

	academyA := seedAcademy(t, db, "Academy A")
	academyB := seedAcademy(t, db, "Academy B")
	ours := seedStudent(t, db, academyA.ID, "Meera")
	theirs := seedStudent(t, db, academyB.ID, "Ravi")

	got, err := FilterAcademyStudentIDs(db, academyA.ID,
		[]uuid.UUID{ours.ID, theirs.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ours.ID}, got)
}

func TestSyncFeesOnBatchCreate_BillsOnlyFilteredRoster(t *testing.T) {
	db := openTestDB(t)

	academyA := seedAcademy(t, db, "Academy A")
	academyB := seedAcademy(t, db, "Academy B")
	ours := seedStudent(t, db, academyA.ID, "Meera")
	theirs := seedStudent(t, db, academyB.ID, "Ravi")
	batch := seedBatch(t, db, academyA.ID, "Salsa Morning")

	studentIDs, err := FilterAcademyStudentIDs(db, academyA.ID,
		[]uuid.UUID{ours.ID, theirs.ID})
	require.NoError(t, err)
	require.NoError(t, AttachBatchStudents(db, &batch, studentIDs))
	require.NoError(t, SyncFeesOnBatchCreate(db, &batch, studentIDs))

	months := MonthLabels(batch.StartDate, batch.EndDate)

	var oursCount, theirsCount int64
	require.NoError(t, db.Model(&models.Fee{}).Where("student_id = ?", ours.ID).Count(&oursCount).Error)
	require.NoError(t, db.Model(&models.Fee{}).Where("student_id = ?", theirs.ID).Count(&theirsCount).Error)
	assert.EqualValues(t, len(months), oursCount)
	assert.Zero(t, theirsCount)
}

func TestBatchDelete_CascadesRosterAndFees(t *testing.T) {
	db := openTestDB(t)

	academy := seedAcademy(t, db, "Rhythm Dance Academy")
	teacher := seedTeacher(t, db, academy.ID, "asha")
	student := seedStudent(t, db, academy.ID, "Meera")
	batch := seedBatch(t, db, academy.ID, "Kathak Evening")
	require.NoError(t, db.Model(&batch).Association("Teachers").Append(&teacher))
	require.NoError(t, db.Model(&batch).Association("Students").Append(&student))
	require.NoError(t, SyncFeesOnBatchCreate(db, &batch, []uuid.UUID{student.ID}))

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ClearBatchRoster(tx, &batch); err != nil {
			return err
		}
		if err := DeleteFeesForBatch(tx, academy.ID, batch.ID); err != nil {
			return err
		}
		return tx.Delete(&batch).Error
	})
	require.NoError(t, err)

	var fees, studentRows, teacherRows int64
	require.NoError(t, db.Model(&models.Fee{}).Where("batch_id = ?", batch.ID).Count(&fees).Error)
	require.NoError(t, db.Table("batch_students").Where("batch_id = ?", batch.ID).Count(&studentRows).Error)
	require.NoError(t, db.Table("batch_teachers").Where("batch_id = ?", batch.ID).Count(&teacherRows).Error)
	assert.Zero(t, fees)
	assert.Zero(t, studentRows)
	assert.Zero(t, teacherRows)
}

func TestStudentDelete_CascadesRosterAndFees(t *testing.T) {
	db := openTestDB(t)

	academy := seedAcademy(t, db, "Rhythm Dance Academy")
	student := seedStudent(t, db, academy.ID, "Meera")
	batch := seedBatch(t, db, academy.ID, "Kathak Evening")
	require.NoError(t, db.Model(&batch).Association("Students").Append(&student))
	require.NoError(t, SyncFeesOnBatchCreate(db, &batch, []uuid.UUID{student.ID}))

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := RemoveStudentEverywhere(tx, &student); err != nil {
			return err
		}
		if err := PurgeFeesForStudent(tx, academy.ID, student.ID); err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
	require.NoError(t, err)

	var fees, rosterRows int64
	require.NoError(t, db.Model(&models.Fee{}).Where("student_id = ?", student.ID).Count(&fees).Error)
	require.NoError(t, db.Table("batch_students").Where("student_id = ?", student.ID).Count(&rosterRows).Error)
	assert.Zero(t, fees)
	assert.Zero(t, rosterRows)
}
