package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marklangat/waleads-backend/internal/model"
)

func weekdayPolicy() *model.AccountSendPolicy {
	return &model.AccountSendPolicy{
		AccountID:        1,
		DailyMessageCap:  300,
		WorkStartHour:    10,
		WorkEndHour:      20,
		ActiveWeekdays:   []int{1, 2, 3, 4, 5},
		Timezone:         "UTC",
		AutopilotEnabled: true,
	}
}

func TestWithinWindowWeekday(t *testing.T) {
	p := weekdayPolicy()
	// Tuesday 2024-06-04.
	assert.False(t, WithinWindow(p, time.Date(2024, 6, 4, 9, 59, 0, 0, time.UTC)))
	assert.True(t, WithinWindow(p, time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)), "start hour is inclusive")
	assert.True(t, WithinWindow(p, time.Date(2024, 6, 4, 19, 59, 0, 0, time.UTC)))
	assert.False(t, WithinWindow(p, time.Date(2024, 6, 4, 20, 0, 0, 0, time.UTC)), "end hour is exclusive")
}

func TestWithinWindowInactiveWeekday(t *testing.T) {
	p := weekdayPolicy()
	// Saturday 2024-06-08, mid-window hour.
	saturday := time.Date(2024, 6, 8, 14, 0, 0, 0, time.UTC)
	assert.False(t, WithinWindow(p, saturday))
}

func TestWithinWindowEmptySpanNeverOpens(t *testing.T) {
	p := weekdayPolicy()
	p.WorkStartHour = 20
	p.WorkEndHour = 10
	for h := 0; h < 24; h++ {
		now := time.Date(2024, 6, 4, h, 0, 0, 0, time.UTC)
		assert.False(t, WithinWindow(p, now), "hour %d", h)
	}

	p.WorkStartHour = 12
	p.WorkEndHour = 12
	for h := 0; h < 24; h++ {
		now := time.Date(2024, 6, 4, h, 0, 0, 0, time.UTC)
		assert.False(t, WithinWindow(p, now), "hour %d", h)
	}
}

func TestWithinWindowTimezone(t *testing.T) {
	p := weekdayPolicy()
	p.Timezone = "Africa/Nairobi" // UTC+3, no DST

	// 08:00 UTC is 11:00 in Nairobi: inside the window.
	assert.True(t, WithinWindow(p, time.Date(2024, 6, 4, 8, 0, 0, 0, time.UTC)))
	// 18:00 UTC is 21:00 in Nairobi: past closing.
	assert.False(t, WithinWindow(p, time.Date(2024, 6, 4, 18, 0, 0, 0, time.UTC)))
}

func TestWithinWindowTimezoneFallback(t *testing.T) {
	p := weekdayPolicy()
	p.Timezone = "Not/AZone"

	// Degraded mode shifts by the fixed fallback offset instead of failing.
	// 08:00 UTC + 3h = 11:00, inside the window.
	assert.True(t, WithinWindow(p, time.Date(2024, 6, 4, 8, 0, 0, 0, time.UTC)))
	// 18:00 UTC + 3h = 21:00, outside.
	assert.False(t, WithinWindow(p, time.Date(2024, 6, 4, 18, 0, 0, 0, time.UTC)))
}

func TestNextSendTimeInsideWindow(t *testing.T) {
	p := weekdayPolicy()
	from := time.Date(2024, 6, 4, 11, 0, 0, 0, time.UTC) // Tuesday
	got := NextSendTime(p, from, 2*time.Hour)
	assert.Equal(t, time.Date(2024, 6, 4, 13, 0, 0, 0, time.UTC), got.UTC())
}

func TestNextSendTimeBeforeOpening(t *testing.T) {
	p := weekdayPolicy()
	from := time.Date(2024, 6, 4, 6, 0, 0, 0, time.UTC)
	got := NextSendTime(p, from, time.Hour)
	assert.Equal(t, time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC), got.UTC())
}

func TestNextSendTimeRollsPastWeekend(t *testing.T) {
	p := weekdayPolicy()
	// Friday 18:00 + 4h lands at 22:00, past closing; Saturday and Sunday
	// are inactive, so the step runs Monday at opening.
	from := time.Date(2024, 6, 7, 18, 0, 0, 0, time.UTC)
	got := NextSendTime(p, from, 4*time.Hour)
	assert.Equal(t, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), got.UTC())
}

func TestNextSendTimeDegenerateWindow(t *testing.T) {
	p := weekdayPolicy()
	p.WorkStartHour = 18
	p.WorkEndHour = 9
	from := time.Date(2024, 6, 4, 11, 0, 0, 0, time.UTC)
	// A window that never opens gets the raw delayed time back.
	got := NextSendTime(p, from, time.Hour)
	assert.Equal(t, from.Add(time.Hour), got)
}
