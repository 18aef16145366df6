package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduleDate(t *testing.T) {
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.Local)

	t.Run("datetime_local", func(t *testing.T) {
		got, err := ParseScheduleDate("2026-03-20T09:30", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 20, 9, 30, 0, 0, time.Local), got)
	})

	t.Run("plain_date", func(t *testing.T) {
		got, err := ParseScheduleDate("2026-03-20", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.Local), got)
	})

	t.Run("now", func(t *testing.T) {
		got, err := ParseScheduleDate("NOW", now)
		require.NoError(t, err)
		assert.Equal(t, now, got)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseScheduleDate("  ", now)
		var pe *TimeParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "date", pe.Field)
	})

	t.Run("natural_language", func(t *testing.T) {
		got, err := ParseScheduleDate("tomorrow", now)
		require.NoError(t, err)
		assert.Equal(t, 15, got.Day())
	})
}

func TestCombineDateAndStart(t *testing.T) {
	day := time.Date(2026, 3, 20, 0, 0, 0, 0, time.Local)

	got, err := CombineDateAndStart(day, "10:15")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 15, got.Minute())

	withTime := time.Date(2026, 3, 20, 8, 0, 0, 0, time.Local)
	got, err = CombineDateAndStart(withTime, "10:15")
	require.NoError(t, err)
	assert.Equal(t, withTime, got)

	got, err = CombineDateAndStart(day, "")
	require.NoError(t, err)
	assert.Equal(t, day, got)
}

func TestTimeParseErrorFormatWithExamples(t *testing.T) {
	err := NewTimeParseError("time", "9:00", "expected HH:MM", ClockExamples...)
	out := err.FormatWithExamples()

	assert.Contains(t, out, "invalid time '9:00'")
	assert.Contains(t, out, "09:00")
}
