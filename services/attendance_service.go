package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/academyhq/academy_backend/apperrors"
	"github.com/academyhq/academy_backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceEntryInput struct {
	StudentID uuid.UUID
	Present   bool
}

// SubmitAttendance records one session for a batch. Checks run in order
// and the first failure wins: batch visible in the academy, submitting
// teacher assigned to it, every marked student on the roster, notes
// present. The insert itself is the uniqueness check — the (batch, date)
// unique index turns a second submission for the same day into a
// conflict no matter how close in time the two requests land.
func SubmitAttendance(db *gorm.DB, academyID, teacherID, batchID uuid.UUID, date time.Time, entries []AttendanceEntryInput, notes string) (*models.Attendance, error) {
	var batch models.Batch
	err := db.Preload("Teachers").Preload("Students").
		First(&batch, "id = ? AND academy_id = ?", batchID, academyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Batch not found in this academy")
		}
		return nil, err
	}

	if !batch.HasTeacher(teacherID) {
		return nil, apperrors.Authorization("Teacher is not assigned to this batch")
	}

	roster := make(map[uuid.UUID]bool, len(batch.Students))
	for _, s := range batch.Students {
		roster[s.ID] = true
	}
	var invalid []string
	for _, e := range entries {
		if !roster[e.StudentID] {
			invalid = append(invalid, e.StudentID.String())
		}
	}
	if len(invalid) > 0 {
		return nil, apperrors.ValidationWith(
			"One or more students do not belong to this batch",
			map[string]any{"invalid_student_ids": invalid},
		)
	}

	if strings.TrimSpace(notes) == "" {
		return nil, apperrors.Validation("Notes are required")
	}

	record := models.Attendance{
		AcademyID: academyID,
		BatchID:   batchID,
		TeacherID: teacherID,
		Date:      NormalizeDate(date),
		Notes:     notes,
	}
	for i, e := range entries {
		record.Entries = append(record.Entries, models.AttendanceEntry{
			StudentID: e.StudentID,
			Present:   e.Present,
			Position:  i,
		})
	}

	if err := db.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Attendance already submitted for this batch today.")
		}
		return nil, err
	}
	return &record, nil
}

type StudentPercentage struct {
	Name       string    `json:"name"`
	StudentID  uuid.UUID `json:"studentId"`
	Percentage string    `json:"percentage"`
}

// PresentCounts tallies, per student appearing in any record, how many
// sessions they were marked present. A student marked absent every time
// still appears with a zero count; a student never marked at all does
// not appear.
func PresentCounts(records []models.Attendance) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, rec := range records {
		for _, e := range rec.Entries {
			if _, ok := counts[e.StudentID]; !ok {
				counts[e.StudentID] = 0
			}
			if e.Present {
				counts[e.StudentID]++
			}
		}
	}
	return counts
}

// FormatPercentage renders present/total as a two-decimal percentage.
func FormatPercentage(present, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(present)/float64(total)*100)
}

// AttendancePercentages computes each student's share of recorded
// sessions for the batch. The denominator is sessions actually held
// (attendance rows), not scheduled days — an unrecorded day counts for
// nobody. Zero recorded sessions yields an empty result.
func AttendancePercentages(db *gorm.DB, academyID, batchID uuid.UUID) ([]StudentPercentage, error) {
	var records []models.Attendance
	err := db.Preload("Entries").
		Where("batch_id = ? AND academy_id = ?", batchID, academyID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	totalSessions := len(records)
	counts := PresentCounts(records)
	if len(counts) == 0 {
		return []StudentPercentage{}, nil
	}

	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	var students []models.Student
	if err := db.Where("id IN ? AND academy_id = ?", ids, academyID).Find(&students).Error; err != nil {
		return nil, err
	}

	result := make([]StudentPercentage, 0, len(students))
	for _, stu := range students {
		result = append(result, StudentPercentage{
			Name:       stu.Name,
			StudentID:  stu.ID,
			Percentage: FormatPercentage(counts[stu.ID], totalSessions),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
