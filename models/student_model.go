package models

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AcademyID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_students_identity" json:"academy_id"`
	Name        string     `gorm:"size:255;not null;uniqueIndex:idx_students_identity" json:"name"`
	ParentName  string     `gorm:"size:255;not null;uniqueIndex:idx_students_identity" json:"parent_name"`
	ParentPhone string     `gorm:"size:20;not null" json:"parent_phone"`
	ParentEmail *string    `gorm:"size:255" json:"parent_email,omitempty"`
	DOB         *time.Time `gorm:"uniqueIndex:idx_students_identity" json:"dob,omitempty"`
	Photo       *string    `gorm:"size:255" json:"photo,omitempty"`
	JoinDate    time.Time  `gorm:"not null" json:"join_date"`

	// Inverse side of Batch.Students; rows live in batch_students.
	Batches []*Batch `gorm:"many2many:batch_students;" json:"batches,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
