package model

import "time"

// AccountSendPolicy is the per-account sending configuration. It is owned by
// account settings management; the dispatch core only reads it.
type AccountSendPolicy struct {
	AccountID        int    `db:"account_id" json:"account_id"`
	DailyMessageCap  int    `db:"daily_message_cap" json:"daily_message_cap"`
	WorkStartHour    int    `db:"work_start_hour" json:"work_start_hour"`
	WorkEndHour      int    `db:"work_end_hour" json:"work_end_hour"`
	ActiveWeekdays   []int  `db:"active_weekdays" json:"active_weekdays"`
	Timezone         string `db:"timezone" json:"timezone"`
	AutopilotEnabled bool   `db:"autopilot_enabled" json:"autopilot_enabled"`
}

// ActiveOn reports whether the weekday is in the policy's active set.
// Weekdays use time.Weekday numbering (Sunday = 0).
func (p *AccountSendPolicy) ActiveOn(d time.Weekday) bool {
	for _, wd := range p.ActiveWeekdays {
		if time.Weekday(wd) == d {
			return true
		}
	}
	return false
}

// WorkSpanHours is the length of the daily sending window in whole hours.
// Non-positive spans mean the window never opens.
func (p *AccountSendPolicy) WorkSpanHours() int {
	return p.WorkEndHour - p.WorkStartHour
}
