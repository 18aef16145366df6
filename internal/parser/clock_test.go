package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimeToAMPM(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"00:05", "12:05 AM"},
		{"09:00", "9:00 AM"},
		{"11:59", "11:59 AM"},
		{"12:00", "12:00 PM"},
		{"14:30", "2:30 PM"},
		{"23:59", "11:59 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimeToAMPM(tt.input))
		})
	}
}

func TestIsClockTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"padded", "09:00", true},
		{"evening", "23:59", true},
		{"unpadded_hour", "9:00", false},
		{"seconds", "09:00:00", false},
		{"empty", "", false},
		{"letters", "ab:cd", false},
		{"trailing_space", "09:00 ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClockTime(tt.input))
		})
	}
}

func TestTruncateToMinute(t *testing.T) {
	in := time.Date(2026, 3, 14, 9, 41, 37, 500, time.Local)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 41, 0, 0, time.Local), TruncateToMinute(in))
}

func TestSameMinute(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)

	assert.True(t, SameMinute(base, base.Add(59*time.Second)))
	assert.False(t, SameMinute(base, base.Add(time.Minute)))
	assert.False(t, SameMinute(base, base.Add(-time.Second)))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 3, 14, 17, 5, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local), StartOfDay(in))
}

func TestIsToday(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)

	assert.True(t, IsToday(now.Add(-11*time.Hour), now))
	assert.False(t, IsToday(now.AddDate(0, 0, -1), now))
}

func TestApplyClock(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)

	t.Run("valid", func(t *testing.T) {
		got, err := ApplyClock(day, "14:30")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 14, 14, 30, 0, 0, time.Local), got)
	})

	t.Run("unpadded", func(t *testing.T) {
		_, err := ApplyClock(day, "9:00")
		assert.Error(t, err)
	})

	t.Run("out_of_range", func(t *testing.T) {
		_, err := ApplyClock(day, "25:00")
		var pe *TimeParseError
		assert.ErrorAs(t, err, &pe)
	})
}
