package sobriety

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysSober(t *testing.T) {
	tests := []struct {
		name  string
		clean time.Time
		now   time.Time
		want  int
	}{
		{"same day", date(2024, 1, 1), date(2024, 1, 1), 0},
		{"one day", date(2024, 1, 1), date(2024, 1, 2), 1},
		{"thirty days", date(2024, 1, 1), date(2024, 1, 31), 30},
		{"across leap day", date(2024, 2, 28), date(2024, 3, 1), 2},
		{"non-leap february", date(2023, 2, 28), date(2023, 3, 1), 1},
		{"full leap year", date(2024, 1, 1), date(2025, 1, 1), 366},
		{"ignores time of day", time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC), time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysSober(tt.clean, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysSoberDSTSafe(t *testing.T) {
	// Spring-forward day is 23 wall-clock hours long; calendar-date
	// arithmetic must still count it as a full day.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	clean := time.Date(2024, 3, 10, 8, 0, 0, 0, loc)
	now := time.Date(2024, 3, 11, 7, 0, 0, 0, loc)

	got, err := DaysSober(clean, now)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestDaysSoberFutureCleanDate(t *testing.T) {
	_, err := DaysSober(date(2024, 6, 1), date(2024, 5, 31))
	require.Error(t, err)

	var invalid *InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "clean_date", invalid.Field)
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name  string
		clean time.Time
		now   time.Time
		want  Breakdown
	}{
		{"zero", date(2024, 1, 1), date(2024, 1, 1), Breakdown{}},
		{"days only", date(2024, 1, 1), date(2024, 1, 15), Breakdown{Days: 14}},
		{"one month", date(2024, 1, 1), date(2024, 2, 1), Breakdown{Months: 1}},
		{"one year", date(2023, 3, 15), date(2024, 3, 15), Breakdown{Years: 1}},
		{"mixed", date(2022, 1, 10), date(2024, 3, 12), Breakdown{Years: 2, Months: 2, Days: 2}},
		// Jan 31 + 1 month normalizes past Mar 1, so the month is not
		// complete and the gap stays in days.
		{"month-end start", date(2024, 1, 31), date(2024, 3, 1), Breakdown{Days: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompose(tt.clean, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Recombining years, then months, then days from the clean date must land
// exactly on now's calendar date.
func TestDecomposeRoundTrip(t *testing.T) {
	starts := []time.Time{
		date(2020, 2, 29),
		date(2021, 12, 31),
		date(2022, 1, 31),
		date(2023, 6, 15),
		date(2024, 1, 1),
	}
	offsets := []int{0, 1, 27, 28, 29, 30, 31, 59, 60, 90, 180, 364, 365, 366, 400, 730, 1000}

	for _, start := range starts {
		for _, off := range offsets {
			end := start.AddDate(0, 0, off)
			bd, err := Decompose(start, end)
			require.NoError(t, err)

			rejoined := start.AddDate(bd.Years, 0, 0).AddDate(0, bd.Months, 0).AddDate(0, 0, bd.Days)
			assert.True(t, rejoined.Equal(end),
				"start %s + %dy %dm %dd = %s, want %s",
				start.Format(time.DateOnly), bd.Years, bd.Months, bd.Days,
				rejoined.Format(time.DateOnly), end.Format(time.DateOnly))
		}
	}
}

func TestCalculateMilestones(t *testing.T) {
	// End-to-end: one month sober on the default catalog.
	result, err := CalculateMilestones(date(2024, 1, 1), date(2024, 1, 31))
	require.NoError(t, err)

	assert.Equal(t, 30, result.TotalDays)
	assert.Equal(t, Breakdown{Days: 30}, result.Breakdown)

	require.Len(t, result.Achieved, 3)
	labels := []string{}
	for _, a := range result.Achieved {
		labels = append(labels, a.Milestone.Label)
	}
	assert.Equal(t, []string{"24 Hours", "1 Week", "30 Days"}, labels)

	// Exactly 30 days: the 30-day token is achieved today, not next.
	last := result.Achieved[2]
	assert.Equal(t, 30, last.Milestone.Days)
	assert.True(t, last.DateAchieved.Equal(date(2024, 1, 31)))

	require.NotNil(t, result.Next)
	assert.Equal(t, 60, result.Next.Milestone.Days)
	assert.Equal(t, 30, result.Next.DaysRemaining)
	assert.True(t, result.Next.TargetDate.Equal(date(2024, 3, 1)))
}

func TestCalculateAchievedSorted(t *testing.T) {
	result, err := CalculateMilestones(date(2020, 1, 1), date(2024, 1, 1))
	require.NoError(t, err)

	prev := 0
	for _, a := range result.Achieved {
		assert.Greater(t, a.Milestone.Days, prev)
		prev = a.Milestone.Days
	}
}

func TestCalculateAllMilestonesReached(t *testing.T) {
	catalog := Catalog{
		{Days: 30, Label: "30 Days"},
		{Days: 60, Label: "60 Days"},
	}

	result, err := catalog.Calculate(date(2024, 1, 1), date(2024, 3, 2))
	require.NoError(t, err)

	assert.Len(t, result.Achieved, 2)
	assert.Nil(t, result.Next, "next is absent when everything is achieved")
}

func TestCalculateDayZero(t *testing.T) {
	result, err := CalculateMilestones(date(2024, 5, 20), date(2024, 5, 20))
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalDays)
	assert.Empty(t, result.Achieved)
	require.NotNil(t, result.Next)
	assert.Equal(t, 1, result.Next.Milestone.Days)
	assert.Equal(t, 1, result.Next.DaysRemaining)
}

func TestCalculateFutureCleanDate(t *testing.T) {
	_, err := CalculateMilestones(date(2030, 1, 1), date(2024, 1, 1))

	var invalid *InvalidInputError
	require.True(t, errors.As(err, &invalid))
}
