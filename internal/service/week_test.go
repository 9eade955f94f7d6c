package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentWeek_Wednesday(t *testing.T) {
	// Wednesday 2025-01-08 14:30 falls into the week starting Tuesday
	// 2025-01-07.
	now := time.Date(2025, 1, 8, 14, 30, 0, 0, time.UTC)

	week := CurrentWeek(now)

	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), week.Start)
	assert.Equal(t, time.Date(2025, 1, 13, 23, 59, 59, 999000000, time.UTC), week.End)
}

func TestCurrentWeek_TuesdayIsItsOwnStart(t *testing.T) {
	// Any time on Tuesday belongs to the week starting that same day.
	now := time.Date(2025, 1, 7, 23, 59, 0, 0, time.UTC)

	week := CurrentWeek(now)

	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), week.Start)
}

func TestCurrentWeek_MondayBelongsToPreviousTuesday(t *testing.T) {
	now := time.Date(2025, 1, 13, 3, 0, 0, 0, time.UTC)

	week := CurrentWeek(now)

	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), week.Start)
	assert.Equal(t, time.Weekday(time.Tuesday), week.Start.Weekday())
}

func TestCurrentWeek_SpansExactlySevenDays(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	week := CurrentWeek(now)

	assert.Equal(t, 7*24*time.Hour-time.Millisecond, week.End.Sub(week.Start))
	assert.True(t, week.Start.Before(now) || week.Start.Equal(now))
	assert.True(t, week.End.After(now))
}

func TestMythicPlusVaultTier(t *testing.T) {
	cases := []struct {
		runs int
		tier int
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 2},
		{7, 2},
		{8, 3},
		{20, 3},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.tier, mythicPlusVaultTier(tc.runs), "runs=%d", tc.runs)
	}
}

func TestRaidVaultTier(t *testing.T) {
	cases := []struct {
		kills int
		tier  int
	}{
		{0, 0},
		{2, 0},
		{3, 1},
		{5, 1},
		{6, 2},
		{8, 2},
		{9, 3},
		{12, 3},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.tier, raidVaultTier(tc.kills), "kills=%d", tc.kills)
	}
}
