package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FeeStatusPending = "pending"
	FeeStatusPaid    = "paid"
)

// Fee is one student's billing obligation for one batch for one calendar
// month. The (student, batch, month) triple is unique within an academy —
// a month is never charged twice.
type Fee struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AcademyID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_fees_triple" json:"academy_id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_fees_triple" json:"student_id"`
	BatchID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_fees_triple" json:"batch_id"`
	Month     string     `gorm:"size:30;not null;uniqueIndex:idx_fees_triple" json:"month"`
	Amount    float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status    string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidOn    *time.Time `json:"paid_on,omitempty"`
	Mode      string     `gorm:"size:20;default:'cash'" json:"mode"`
	Remarks   *string    `gorm:"type:text" json:"remarks,omitempty"`

	// Set once the receipt PDF has been generated for a paid fee.
	ReceiptNumber *string `gorm:"size:20" json:"receipt_number,omitempty"`
	ReceiptURL    *string `gorm:"size:255" json:"receipt_url,omitempty"`

	Student Student `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Batch   Batch   `gorm:"foreignkey:BatchID" json:"batch,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
