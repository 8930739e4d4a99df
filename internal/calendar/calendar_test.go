package calendar_test

import (
	"testing"
	"time"

	"github.com/mentorhub/bookings/internal/calendar"
	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestWeekBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		in        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "midweek",
			in:        date(2025, time.March, 12, 15, 30),
			wantStart: date(2025, time.March, 10, 0, 0),
			wantEnd:   date(2025, time.March, 17, 0, 0),
		},
		{
			name:      "monday midnight maps to its own week",
			in:        date(2025, time.March, 10, 0, 0),
			wantStart: date(2025, time.March, 10, 0, 0),
			wantEnd:   date(2025, time.March, 17, 0, 0),
		},
		{
			name:      "sunday belongs to the previous monday's week",
			in:        date(2025, time.March, 16, 23, 59),
			wantStart: date(2025, time.March, 10, 0, 0),
			wantEnd:   date(2025, time.March, 17, 0, 0),
		},
		{
			name:      "week spanning a month boundary",
			in:        date(2025, time.April, 1, 9, 0),
			wantStart: date(2025, time.March, 31, 0, 0),
			wantEnd:   date(2025, time.April, 7, 0, 0),
		},
		{
			name:      "week spanning a year boundary",
			in:        date(2025, time.January, 2, 12, 0),
			wantStart: date(2024, time.December, 30, 0, 0),
			wantEnd:   date(2025, time.January, 6, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := calendar.WeekBoundaries(tt.in)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, time.Monday, start.Weekday())
			assert.True(t, calendar.IsInWeek(tt.in, start, end))
		})
	}
}

func TestWeekBoundaries_HalfOpen(t *testing.T) {
	start, end := calendar.WeekBoundaries(date(2025, time.March, 12, 0, 0))

	assert.True(t, calendar.IsInWeek(start, start, end), "week start is included")
	assert.False(t, calendar.IsInWeek(end, start, end), "week end is excluded")
	assert.True(t, calendar.IsInWeek(end.Add(-time.Second), start, end))
}

func TestNextResetAt(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek returns the coming monday",
			now:  date(2025, time.March, 12, 8, 0),
			want: date(2025, time.March, 17, 0, 0),
		},
		{
			name: "sunday evening returns the next morning",
			now:  date(2025, time.March, 16, 22, 0),
			want: date(2025, time.March, 17, 0, 0),
		},
		{
			name: "exactly monday midnight skips to the following monday",
			now:  date(2025, time.March, 10, 0, 0),
			want: date(2025, time.March, 17, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calendar.NextResetAt(tt.now)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.now), "reset time must be strictly in the future")
		})
	}
}

func TestIsInCurrentWeek(t *testing.T) {
	now := date(2025, time.March, 12, 10, 0)

	assert.True(t, calendar.IsInCurrentWeek(date(2025, time.March, 14, 18, 0), now))
	assert.False(t, calendar.IsInCurrentWeek(date(2025, time.March, 17, 0, 0), now), "next monday is next week")
	assert.False(t, calendar.IsInCurrentWeek(date(2025, time.March, 9, 23, 0), now), "previous sunday is last week")
}

func TestSameWeek(t *testing.T) {
	assert.True(t, calendar.SameWeek(date(2025, time.March, 10, 0, 0), date(2025, time.March, 16, 23, 0)))
	assert.False(t, calendar.SameWeek(date(2025, time.March, 16, 23, 0), date(2025, time.March, 17, 1, 0)))
}
