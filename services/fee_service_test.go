package services

import (
	"testing"
	"time"

	"github.com/academyhq/academy_backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFeeRows_CrossProduct(t *testing.T) {
	academyID, batchID := uuid.New(), uuid.New()
	students := []uuid.UUID{uuid.New(), uuid.New()}
	months := MonthLabels(date(2025, time.January, 15), date(2025, time.March, 2))

	rows := BuildFeeRows(academyID, batchID, students, months, 500)
	require.Len(t, rows, 6)

	seen := make(map[string]bool)
	for _, row := range rows {
		assert.Equal(t, academyID, row.AcademyID)
		assert.Equal(t, batchID, row.BatchID)
		assert.Equal(t, 500.0, row.Amount)
		assert.Equal(t, models.FeeStatusPending, row.Status)
		assert.Nil(t, row.PaidOn)

		key := row.StudentID.String() + "|" + row.Month
		assert.False(t, seen[key], "duplicate (student, month) pair %s", key)
		seen[key] = true
	}
}

func TestBuildFeeRows_EmptyInputs(t *testing.T) {
	academyID, batchID := uuid.New(), uuid.New()

	assert.Empty(t, BuildFeeRows(academyID, batchID, nil, []string{"June 2025"}, 500))
	assert.Empty(t, BuildFeeRows(academyID, batchID, []uuid.UUID{uuid.New()}, nil, 500))
}
