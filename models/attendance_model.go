package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance is the record of one held session: one row per (batch, day),
// no matter which teacher submits. There is deliberately no update or
// delete path — once a day is recorded it stays recorded.
type Attendance struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AcademyID uuid.UUID `gorm:"type:uuid;not null" json:"academy_id"`
	BatchID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_batch_date" json:"batch_id"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null" json:"teacher_id"`
	// Normalized to midnight UTC before insert; the unique index with
	// BatchID makes a second submission for the same day collide.
	Date  time.Time `gorm:"not null;uniqueIndex:idx_attendance_batch_date" json:"date"`
	Notes string    `gorm:"type:text;not null" json:"notes"`

	Entries []AttendanceEntry `gorm:"foreignkey:AttendanceID" json:"entries"`
	Teacher Teacher           `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AttendanceEntry marks one student present or absent within a record.
// Position preserves the submitted roster order.
type AttendanceEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AttendanceID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null" json:"student_id"`
	Present      bool      `gorm:"not null" json:"present"`
	Position     int       `gorm:"not null" json:"-"`

	Student Student `gorm:"foreignkey:StudentID" json:"student,omitempty"`
}
