package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Batch is a recurring class offering with a fixed roster and a monthly fee.
// Name is unique within an academy; StartDate must not be after EndDate.
type Batch struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AcademyID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_batches_academy_name" json:"academy_id"`
	Name      string         `gorm:"size:255;not null;uniqueIndex:idx_batches_academy_name" json:"name"`
	StartDate time.Time      `gorm:"not null" json:"start_date"`
	EndDate   time.Time      `gorm:"not null" json:"end_date"`
	Days      pq.StringArray `gorm:"type:text[]" json:"days"`
	TimeSlot  string         `gorm:"size:100" json:"time_slot"`
	Location  string         `gorm:"size:255" json:"location"`
	Fee       float64        `gorm:"type:numeric(10,2);not null" json:"fee"`

	Teachers []*Teacher `gorm:"many2many:batch_teachers;" json:"teachers,omitempty"`
	Students []*Student `gorm:"many2many:batch_students;" json:"students,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// StudentIDs returns the ids of the loaded roster. Callers must have
// preloaded Students.
func (b *Batch) StudentIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Students))
	for _, s := range b.Students {
		ids = append(ids, s.ID)
	}
	return ids
}

// TeacherIDs returns the ids of the loaded teacher list.
func (b *Batch) TeacherIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Teachers))
	for _, t := range b.Teachers {
		ids = append(ids, t.ID)
	}
	return ids
}

// HasTeacher reports whether the loaded teacher list contains id.
func (b *Batch) HasTeacher(id uuid.UUID) bool {
	for _, t := range b.Teachers {
		if t.ID == id {
			return true
		}
	}
	return false
}
