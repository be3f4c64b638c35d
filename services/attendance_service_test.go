package services

import (
	"testing"

	"github.com/academyhq/academy_backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(entries ...models.AttendanceEntry) models.Attendance {
	return models.Attendance{Entries: entries}
}

func TestPresentCounts(t *testing.T) {
	present, absent := uuid.New(), uuid.New()

	// Two sessions: "present" shows up once, "absent" is marked both
	// times but never present.
	records := []models.Attendance{
		record(
			models.AttendanceEntry{StudentID: present, Present: true},
			models.AttendanceEntry{StudentID: absent, Present: false},
		),
		record(
			models.AttendanceEntry{StudentID: present, Present: false},
			models.AttendanceEntry{StudentID: absent, Present: false},
		),
	}

	counts := PresentCounts(records)
	require.Len(t, counts, 2)
	assert.Equal(t, 1, counts[present])
	assert.Equal(t, 0, counts[absent])
}

func TestPresentCounts_UnmarkedStudentExcluded(t *testing.T) {
	marked, never := uuid.New(), uuid.New()

	records := []models.Attendance{
		record(models.AttendanceEntry{StudentID: marked, Present: true}),
	}

	counts := PresentCounts(records)
	_, ok := counts[never]
	assert.False(t, ok, "a student never marked in any record must not appear at all")
	assert.Len(t, counts, 1)
}

func TestPresentCounts_NoSessions(t *testing.T) {
	assert.Empty(t, PresentCounts(nil))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "50.00%", FormatPercentage(1, 2))
	assert.Equal(t, "100.00%", FormatPercentage(2, 2))
	assert.Equal(t, "0.00%", FormatPercentage(0, 2))
	assert.Equal(t, "66.67%", FormatPercentage(2, 3))
	assert.Equal(t, "0%", FormatPercentage(0, 0))
}
