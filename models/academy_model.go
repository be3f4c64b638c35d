package models

import (
	"time"

	"github.com/google/uuid"
)

// Academy is the tenant root. Every other entity carries its id and
// nothing mutates it after registration.
type Academy struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name  string    `gorm:"size:255;not null;unique" json:"name"`
	Email string    `gorm:"size:255;not null" json:"email"`
	Phone string    `gorm:"size:20;not null" json:"phone"`

	CreatedAt time.Time `json:"created_at"`
}
