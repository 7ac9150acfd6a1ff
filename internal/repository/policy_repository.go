package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/marklangat/waleads-backend/internal/model"
)

type PolicyRepository struct {
	DB *sql.DB
}

// GetByAccountID fetches the account's send policy. A missing policy is not
// an error: the caller treats it as zero eligible slots for the tick.
func (r *PolicyRepository) GetByAccountID(accountID int) (*model.AccountSendPolicy, error) {
	query := `
		SELECT account_id, daily_message_cap, work_start_hour, work_end_hour,
		       active_weekdays, timezone, autopilot_enabled
		FROM account_send_policies
		WHERE account_id = $1
	`
	var p model.AccountSendPolicy
	var weekdays pq.Int64Array
	err := r.DB.QueryRow(query, accountID).Scan(
		&p.AccountID,
		&p.DailyMessageCap,
		&p.WorkStartHour,
		&p.WorkEndHour,
		&weekdays,
		&p.Timezone,
		&p.AutopilotEnabled,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.ActiveWeekdays = make([]int, len(weekdays))
	for i, d := range weekdays {
		p.ActiveWeekdays[i] = int(d)
	}
	return &p, nil
}
