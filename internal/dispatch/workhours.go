package dispatch

import (
	"time"

	"github.com/marklangat/waleads-backend/internal/model"
)

// fallbackUTCOffsetHours is the degraded-mode offset applied when the
// policy's timezone cannot be resolved. Sending with a wrong-but-plausible
// local clock beats not sending at all.
const fallbackUTCOffsetHours = 3

// localAt converts now to the policy's local time, falling back to a fixed
// UTC offset when the timezone name does not resolve.
func localAt(p *model.AccountSendPolicy, now time.Time) time.Time {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return now.UTC().Add(fallbackUTCOffsetHours * time.Hour)
	}
	return now.In(loc)
}

// WithinWindow reports whether now falls inside the policy's sending window:
// the local weekday is active and the local hour is in [start, end). A
// policy with start >= end defines an empty window and never opens.
func WithinWindow(p *model.AccountSendPolicy, now time.Time) bool {
	if p.WorkStartHour >= p.WorkEndHour {
		return false
	}
	local := localAt(p, now)
	if !p.ActiveOn(local.Weekday()) {
		return false
	}
	h := local.Hour()
	return h >= p.WorkStartHour && h < p.WorkEndHour
}

// StartOfLocalDay returns the beginning of the account-local day containing
// now. The daily cap counts sends from this instant.
func StartOfLocalDay(p *model.AccountSendPolicy, now time.Time) time.Time {
	local := localAt(p, now)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// NextSendTime computes when a follow-up step becomes eligible: from plus the
// step delay, pushed forward to the policy's next open window. A time before
// opening hours moves to the same day's start hour; a time at or past closing
// rolls to the next active day's start hour. Policies whose window never
// opens get the raw delayed time back.
func NextSendTime(p *model.AccountSendPolicy, from time.Time, delay time.Duration) time.Time {
	t := from.Add(delay)
	if p.WorkSpanHours() <= 0 || len(p.ActiveWeekdays) == 0 {
		return t
	}

	local := localAt(p, t)
	// A week of day-rolls is enough to hit an active weekday.
	for i := 0; i < 8; i++ {
		if !p.ActiveOn(local.Weekday()) || local.Hour() >= p.WorkEndHour {
			local = time.Date(local.Year(), local.Month(), local.Day()+1,
				p.WorkStartHour, 0, 0, 0, local.Location())
			continue
		}
		if local.Hour() < p.WorkStartHour {
			local = time.Date(local.Year(), local.Month(), local.Day(),
				p.WorkStartHour, 0, 0, 0, local.Location())
			continue
		}
		return local
	}
	return t
}
