package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthLabels_InclusiveOnBothEnds(t *testing.T) {
	// Jan 15 – Mar 2 bills January, February and March: granularity is
	// whole calendar months, day-of-month never matters.
	labels := MonthLabels(date(2025, time.January, 15), date(2025, time.March, 2))
	assert.Equal(t, []string{"January 2025", "February 2025", "March 2025"}, labels)
}

func TestMonthLabels_SingleMonth(t *testing.T) {
	labels := MonthLabels(date(2025, time.June, 1), date(2025, time.June, 30))
	assert.Equal(t, []string{"June 2025"}, labels)
}

func TestMonthLabels_AcrossYearBoundary(t *testing.T) {
	labels := MonthLabels(date(2024, time.November, 20), date(2025, time.February, 1))
	assert.Equal(t, []string{"November 2024", "December 2024", "January 2025", "February 2025"}, labels)
}

func TestMonthLabels_EndBeforeStart(t *testing.T) {
	assert.Empty(t, MonthLabels(date(2025, time.June, 1), date(2025, time.May, 1)))
}

func TestMonthStart_RoundTripsLabels(t *testing.T) {
	for _, label := range MonthLabels(date(2025, time.January, 15), date(2025, time.March, 2)) {
		start, err := MonthStart(label)
		require.NoError(t, err)
		assert.Equal(t, 1, start.Day())
	}

	_, err := MonthStart("notamonth 2025")
	assert.Error(t, err)
}

func TestNormalizeDate_StripsTimeOfDay(t *testing.T) {
	morning := time.Date(2025, time.June, 2, 8, 15, 30, 999, time.UTC)
	evening := time.Date(2025, time.June, 2, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, NormalizeDate(morning), NormalizeDate(evening))
	assert.Equal(t, date(2025, time.June, 2), NormalizeDate(morning))
}

func TestSessionDates_StopsAtToday(t *testing.T) {
	// Mon/Wed batch through June; with today = Jun 10 only Jun 2, 4 and 9
	// have happened.
	got := SessionDates(
		date(2025, time.June, 2), date(2025, time.June, 30),
		[]string{"Monday", "Wednesday"},
		date(2025, time.June, 10),
	)

	want := []time.Time{
		date(2025, time.June, 2),
		date(2025, time.June, 4),
		date(2025, time.June, 9),
	}
	assert.Equal(t, want, got)
}

func TestSessionDates_ClampsToEndDate(t *testing.T) {
	got := SessionDates(
		date(2025, time.June, 2), date(2025, time.June, 9),
		[]string{"Monday", "Wednesday"},
		date(2025, time.July, 1),
	)
	assert.Equal(t, []time.Time{
		date(2025, time.June, 2),
		date(2025, time.June, 4),
		date(2025, time.June, 9),
	}, got)
}

func TestSessionDates_FutureStartYieldsNothing(t *testing.T) {
	got := SessionDates(
		date(2025, time.June, 2), date(2025, time.June, 30),
		[]string{"Monday"},
		date(2025, time.May, 1),
	)
	assert.Empty(t, got)
}

func TestSessionDates_WeekdayMatchIsCaseInsensitive(t *testing.T) {
	got := SessionDates(
		date(2025, time.June, 2), date(2025, time.June, 8),
		[]string{"monday", " SATURDAY "},
		date(2025, time.June, 30),
	)
	assert.Equal(t, []time.Time{
		date(2025, time.June, 2),
		date(2025, time.June, 7),
	}, got)
}
