package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMonth(t *testing.T, s string) Month {
	t.Helper()
	m, err := ParseMonth(s)
	require.NoError(t, err)
	return m
}

func TestIsValidMonthFormat(t *testing.T) {
	cases := map[string]bool{
		"2025-01":  true,
		"2025-12":  true,
		"1999-09":  true,
		"2025-00":  false,
		"2025-13":  false,
		"2025-1":   false,
		"25-01":    false,
		"2025/01":  false,
		"2025-01 ": false,
		"":         false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsValidMonthFormat(in), in)
	}
}

func TestParseMonth(t *testing.T) {
	m := mustMonth(t, "2025-11")
	assert.Equal(t, Month{Year: 2025, Month: time.November}, m)
	assert.Equal(t, "2025-11", m.String())

	_, err := ParseMonth("2025-13")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestIsInMonth(t *testing.T) {
	nov := mustMonth(t, "2025-11")
	in := time.Date(2025, 11, 30, 23, 59, 59, 0, time.UTC)
	out := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	otherYear := time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsInMonth(&in, nov))
	assert.False(t, IsInMonth(&out, nov))
	assert.False(t, IsInMonth(&otherYear, nov))
	assert.False(t, IsInMonth(nil, nov))
}

func TestIsInMonth_UsesDateLocation(t *testing.T) {
	yangon, err := time.LoadLocation("Asia/Yangon")
	require.NoError(t, err)

	// 2025-11-30 20:00 UTC is already December 1st in Yangon.
	utc := time.Date(2025, 11, 30, 20, 0, 0, 0, time.UTC)
	local := utc.In(yangon)
	assert.True(t, IsInMonth(&utc, mustMonth(t, "2025-11")))
	assert.True(t, IsInMonth(&local, mustMonth(t, "2025-12")))
}

func TestGetMonthRange(t *testing.T) {
	cases := []struct {
		month string
		end   time.Time
	}{
		{"2025-02", time.Date(2025, 2, 28, 23, 59, 59, 999_000_000, time.UTC)},
		{"2024-02", time.Date(2024, 2, 29, 23, 59, 59, 999_000_000, time.UTC)},
		{"2025-04", time.Date(2025, 4, 30, 23, 59, 59, 999_000_000, time.UTC)},
		{"2025-12", time.Date(2025, 12, 31, 23, 59, 59, 999_000_000, time.UTC)},
	}
	for _, tc := range cases {
		start, end := GetMonthRange(mustMonth(t, tc.month), time.UTC)
		assert.Equal(t, mustMonth(t, tc.month).Start(time.UTC), start, tc.month)
		assert.True(t, tc.end.Equal(end), "%s: got %s", tc.month, end)
	}
}

func TestShiftDate_KeepsDayAndClock(t *testing.T) {
	d := time.Date(2025, 11, 10, 8, 15, 30, 123_000_000, time.UTC)
	got := ShiftDate(d, mustMonth(t, "2025-11"), mustMonth(t, "2025-06"))
	assert.Equal(t, time.Date(2025, 6, 10, 8, 15, 30, 123_000_000, time.UTC), got)
}

func TestShiftDate_RoundTrip(t *testing.T) {
	m1 := mustMonth(t, "2025-11")
	m2 := mustMonth(t, "2024-02")
	for day := 1; day <= 28; day++ {
		d := time.Date(2025, 11, day, day%24, day, 59-day, day*1_000_000, time.UTC)
		back := ShiftDate(ShiftDate(d, m1, m2), m2, m1)
		assert.True(t, d.Equal(back), "day %d: %s != %s", day, d, back)
	}
}

func TestShiftDate_RollsOverMissingDays(t *testing.T) {
	d := time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)
	got := ShiftDate(d, mustMonth(t, "2025-05"), mustMonth(t, "2025-06"))
	assert.Equal(t, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), got)

	d = time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	got = ShiftDate(d, mustMonth(t, "2024-01"), mustMonth(t, "2025-02"))
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestShiftDateIfInMonth(t *testing.T) {
	src := mustMonth(t, "2025-11")
	tgt := mustMonth(t, "2025-06")

	assert.Nil(t, ShiftDateIfInMonth(nil, src, tgt))

	outside := time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)
	assert.Same(t, &outside, ShiftDateIfInMonth(&outside, src, tgt))

	inside := time.Date(2025, 11, 10, 8, 0, 0, 0, time.UTC)
	got := ShiftDateIfInMonth(&inside, src, tgt)
	require.NotNil(t, got)
	assert.NotSame(t, &inside, got)
	assert.Equal(t, time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC), *got)
	assert.Equal(t, time.Date(2025, 11, 10, 8, 0, 0, 0, time.UTC), inside)
}

func TestGetDateOffset(t *testing.T) {
	a := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 14, GetDateOffset(a, time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -3, GetDateOffset(a, time.Date(2025, 10, 29, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, GetDateOffset(a, a))
	// half days round up, including on the negative side
	assert.Equal(t, 1, GetDateOffset(a, a.Add(12*time.Hour)))
	assert.Equal(t, 0, GetDateOffset(a, a.Add(-12*time.Hour)))
	assert.Equal(t, 2, GetDateOffset(a, a.Add(36*time.Hour+time.Minute)))
}

func TestAddDays(t *testing.T) {
	d := time.Date(2025, 6, 25, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 7, 9, 17, 45, 0, 0, time.UTC), AddDays(d, 14))
	assert.Equal(t, time.Date(2025, 6, 20, 17, 45, 0, 0, time.UTC), AddDays(d, -5))
}
