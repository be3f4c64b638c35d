package utils

import (
	"math/rand"
	"time"

	"github.com/academyhq/academy_backend/models"
	"gorm.io/gorm"
)

const receiptNumberLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueReceiptNumber returns an RCP-prefixed code not yet used
// by any fee receipt.
func GenerateUniqueReceiptNumber(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, receiptNumberLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := "RCP-" + string(b)

		var fee models.Fee
		err := tx.Where("receipt_number = ?", code).First(&fee).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
