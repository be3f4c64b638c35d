package models

import (
	"time"

	"github.com/google/uuid"
)

type Admin struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AcademyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_admins_academy_username;uniqueIndex:idx_admins_academy_email" json:"academy_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_admins_academy_email" json:"email"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	Username  string    `gorm:"size:100;not null;uniqueIndex:idx_admins_academy_username" json:"username"`
	Password  string    `gorm:"not null" json:"-"`

	Academy Academy `gorm:"foreignkey:AcademyID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
