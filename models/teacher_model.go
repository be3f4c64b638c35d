package models

import (
	"time"

	"github.com/google/uuid"
)

type Teacher struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AcademyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_teachers_academy_username" json:"academy_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Username  string    `gorm:"size:100;not null;uniqueIndex:idx_teachers_academy_username" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Phone     *string   `gorm:"size:20" json:"phone,omitempty"`

	// Inverse side of Batch.Teachers; rows live in batch_teachers.
	AssignedBatches []*Batch `gorm:"many2many:batch_teachers;" json:"assigned_batches,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
