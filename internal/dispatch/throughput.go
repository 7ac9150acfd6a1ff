package dispatch

import "github.com/marklangat/waleads-backend/internal/model"

// SlotLimit computes how many messages one account may dispatch in a single
// tick: the daily cap spread over the work-hours span, then over the ticks
// in an hour, rounding up at both steps. It is a stateless smoothing bound;
// the pipeline separately clamps it by the sends already counted today.
func SlotLimit(p *model.AccountSendPolicy, ticksPerHour int) int {
	span := p.WorkSpanHours()
	if span <= 0 || p.DailyMessageCap <= 0 || ticksPerHour <= 0 {
		return 0
	}
	perHour := (p.DailyMessageCap + span - 1) / span
	return (perHour + ticksPerHour - 1) / ticksPerHour
}
