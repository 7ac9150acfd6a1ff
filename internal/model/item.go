package model

import "time"

// Item statuses. Pending items are the only ones the dispatch workers pick
// up; the other three are terminal.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Worker kinds. Each kind runs its own tick loop over its own slice of the
// dispatch queue.
const (
	KindCampaign     = "campaign"
	KindReactivation = "reactivation"
	KindFollowup     = "followup"
)

// MaxSendAttempts bounds transient-failure retries per item, counted across
// ticks. Reaching it moves the item to failed.
const MaxSendAttempts = 3

// DispatchableItem is one unit of queued outbound work.
type DispatchableItem struct {
	ID             int    `db:"id" json:"id"`
	AccountID      int    `db:"account_id" json:"account_id"`
	ConversationID int    `db:"conversation_id" json:"conversation_id"`
	CampaignID     *int   `db:"campaign_id" json:"campaign_id,omitempty"`
	Kind           string `db:"kind" json:"kind"`
	Destination    string `db:"destination" json:"destination"`
	Payload        string `db:"payload" json:"payload"`
	// GatewayInstance is set for campaign items at enqueue time; reactivation
	// and follow-up items resolve the instance through the account instead.
	GatewayInstance string `db:"gateway_instance" json:"gateway_instance,omitempty"`
	// SequenceID and StepIndex tie a follow-up item to its sequence step.
	SequenceID  *int      `db:"sequence_id" json:"sequence_id,omitempty"`
	StepIndex   int       `db:"step_index" json:"step_index"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status      string    `db:"status" json:"status"`
	RetryCount  int       `db:"retry_count" json:"retry_count"`
	LastError   string    `db:"last_error" json:"last_error,omitempty"`
	// CancelReason records an eligibility veto; empty for other statuses.
	CancelReason string `db:"cancel_reason" json:"cancel_reason,omitempty"`
	// GatewayMessageID is the id assigned by the messaging gateway on a
	// successful send.
	GatewayMessageID string `db:"gateway_message_id" json:"gateway_message_id,omitempty"`
	// ScoreAtSend and StageAtSend snapshot the conversation's lead-scoring
	// fields at the moment of a successful send.
	ScoreAtSend *int      `db:"score_at_send" json:"score_at_send,omitempty"`
	StageAtSend *string   `db:"stage_at_send" json:"stage_at_send,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DispatchOutcome is the ephemeral result of one send attempt. It is folded
// into the item and conversation rows by the committer, never persisted on
// its own.
type DispatchOutcome struct {
	Success          bool
	GatewayMessageID string
	Err              error
}
