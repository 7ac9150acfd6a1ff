package model

import "time"

type Campaign struct {
	ID              int        `db:"id" json:"id"`
	AccountID       int        `db:"account_id" json:"account_id"`
	Name            string     `db:"name" json:"name"`
	Status          string     `db:"status" json:"status"` // draft, sending, done
	BaseTemplate    string     `db:"base_template" json:"base_template"`
	GatewayInstance string     `db:"gateway_instance" json:"gateway_instance"`
	ScheduledAt     *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Contact is a campaign recipient. Each contact maps to one conversation on
// its account.
type Contact struct {
	ID             int    `db:"id" json:"id"`
	AccountID      int    `db:"account_id" json:"account_id"`
	ConversationID int    `db:"conversation_id" json:"conversation_id"`
	Phone          string `db:"phone" json:"phone"`
	FirstName      string `db:"first_name" json:"first_name"`
	LastName       string `db:"last_name" json:"last_name"`
	City           string `db:"city" json:"city"`
}
