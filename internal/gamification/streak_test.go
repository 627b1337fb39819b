package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAdvanceStreakFirstActivity(t *testing.T) {
	step := AdvanceStreak(0, nil, time.Now(), time.UTC)
	require.Equal(t, 1, step.Days)
	require.True(t, step.Changed)
	require.False(t, step.Broken)
}

func TestAdvanceStreakSameDayIsIdempotent(t *testing.T) {
	morning := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)

	step := AdvanceStreak(4, &morning, evening, time.UTC)
	require.Equal(t, 4, step.Days)
	require.False(t, step.Changed)
}

func TestAdvanceStreakNextDayIncrements(t *testing.T) {
	last := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	now := time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)

	step := AdvanceStreak(4, &last, now, time.UTC)
	require.Equal(t, 5, step.Days)
	require.True(t, step.Changed)
}

func TestAdvanceStreakGapResetsToOne(t *testing.T) {
	last := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)

	step := AdvanceStreak(9, &last, now, time.UTC)
	require.Equal(t, 1, step.Days)
	require.True(t, step.Broken)
}

func TestAdvanceStreakUsesLocationForCalendarDays(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 2024-03-10 20:00 UTC is already 2024-03-11 in UTC+7.
	last := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

	require.Equal(t, 0, CalendarDaysBetween(last, now, time.UTC))
	require.Equal(t, 1, CalendarDaysBetween(last, now, jakarta))

	step := AdvanceStreak(2, &last, now, jakarta)
	require.Equal(t, 3, step.Days)
}

func TestAdvanceStreakIgnoresEarlierTimestamps(t *testing.T) {
	last := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	earlier := last.AddDate(0, 0, -3)

	step := AdvanceStreak(3, &last, earlier, time.UTC)
	require.Equal(t, 3, step.Days)
	require.False(t, step.Changed)
}
