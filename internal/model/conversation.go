package model

import "time"

// Funnel stages consulted by the eligibility checks. StageBooked is the
// terminal stage after which automated outreach stops.
const (
	StageNew        = "new"
	StageQualifying = "qualifying"
	StageBooked     = "consultation_booked"
)

// ConversationState carries the per-conversation flags the eligibility filter
// consults. It is shared-mutable: operator-facing routes flip the pause and
// handoff flags outside the dispatch core.
type ConversationState struct {
	ID               int        `db:"id" json:"id"`
	AccountID        int        `db:"account_id" json:"account_id"`
	Phone            string     `db:"phone" json:"phone"`
	PausedByOperator bool       `db:"paused_by_operator" json:"paused_by_operator"`
	HandedToHuman    bool       `db:"handed_to_human" json:"handed_to_human"`
	FunnelStage      string     `db:"funnel_stage" json:"funnel_stage"`
	LeadScore        int        `db:"lead_score" json:"lead_score"`
	LastInboundAt    *time.Time `db:"last_inbound_at" json:"last_inbound_at,omitempty"`
	LastBotContactAt *time.Time `db:"last_bot_contact_at" json:"last_bot_contact_at,omitempty"`
	OutboundCount    int        `db:"outbound_count" json:"outbound_count"`
}

// TranscriptEntry is one message of a conversation's history, fed to the
// generation service when composing follow-up payloads.
type TranscriptEntry struct {
	Role string `db:"role" json:"role"` // "customer" or "bot"
	Text string `db:"text" json:"text"`
}
