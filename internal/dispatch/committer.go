package dispatch

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/marklangat/waleads-backend/internal/model"
)

// FailureAlerter receives fire-and-forget notifications about items that
// exhausted their retry budget. Implementations must not block.
type FailureAlerter interface {
	ItemFailed(item *model.DispatchableItem, lastError string)
}

// Committer folds a DispatchOutcome into durable state: the item's status
// transition, the conversation's outbound aggregates, and — when a follow-up
// sequence exists — the next step's pending item. The writes are sequential
// but a later tick only ever re-selects items still pending, so a partial
// commit cannot double-send.
type Committer struct {
	Items         ItemStore
	Conversations ConversationStore
	Followups     FollowupStore
	Alerter       FailureAlerter // optional
	Log           zerolog.Logger
	Now           func() time.Time
}

func (c *Committer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Cancel records an eligibility veto. Vetoes are terminal and never touch
// the retry counter.
func (c *Committer) Cancel(item *model.DispatchableItem, reason string) error {
	c.Log.Info().
		Int("item_id", item.ID).
		Int("conversation_id", item.ConversationID).
		Str("reason", reason).
		Msg("item cancelled")
	return c.Items.MarkCancelled(item.ID, reason)
}

// Commit applies one send outcome.
func (c *Committer) Commit(item *model.DispatchableItem, conv *model.ConversationState, policy *model.AccountSendPolicy, outcome model.DispatchOutcome) error {
	if !outcome.Success {
		return c.commitFailure(item, outcome)
	}

	sentAt := c.now()
	if err := c.Items.MarkSent(item.ID, outcome.GatewayMessageID, conv.LeadScore, conv.FunnelStage, sentAt); err != nil {
		return err
	}
	if err := c.Conversations.RecordBotContact(conv.ID, sentAt); err != nil {
		return err
	}
	c.Log.Info().
		Int("item_id", item.ID).
		Int("account_id", item.AccountID).
		Str("gateway_message_id", outcome.GatewayMessageID).
		Msg("item sent")

	if item.SequenceID != nil && policy != nil {
		if err := c.scheduleNextStep(item, policy, sentAt); err != nil {
			// The send itself succeeded; losing the next step is logged,
			// not propagated, so the item's terminal state stands.
			c.Log.Error().Err(err).
				Int("item_id", item.ID).
				Int("sequence_id", *item.SequenceID).
				Msg("failed to schedule next follow-up step")
		}
	}
	return nil
}

func (c *Committer) commitFailure(item *model.DispatchableItem, outcome model.DispatchOutcome) error {
	lastError := ""
	if outcome.Err != nil {
		lastError = outcome.Err.Error()
	}
	retry := item.RetryCount + 1

	if retry >= model.MaxSendAttempts {
		c.Log.Warn().
			Int("item_id", item.ID).
			Int("retry_count", retry).
			Str("last_error", lastError).
			Msg("item failed permanently")
		if err := c.Items.MarkFailed(item.ID, retry, lastError); err != nil {
			return err
		}
		if c.Alerter != nil {
			c.Alerter.ItemFailed(item, lastError)
		}
		return nil
	}

	c.Log.Warn().
		Int("item_id", item.ID).
		Int("retry_count", retry).
		Str("last_error", lastError).
		Msg("transient send failure, will retry next tick")
	return c.Items.MarkRetryPending(item.ID, retry, lastError)
}

func (c *Committer) scheduleNextStep(item *model.DispatchableItem, policy *model.AccountSendPolicy, sentAt time.Time) error {
	step, err := c.Followups.GetStep(*item.SequenceID, item.StepIndex+1)
	if err != nil {
		return err
	}
	if step == nil {
		return nil // sequence exhausted
	}

	next := &model.DispatchableItem{
		AccountID:      item.AccountID,
		ConversationID: item.ConversationID,
		Kind:           model.KindFollowup,
		Destination:    item.Destination,
		SequenceID:     item.SequenceID,
		StepIndex:      step.StepIndex,
		ScheduledAt:    NextSendTime(policy, sentAt, time.Duration(step.DelayHours)*time.Hour),
		Status:         model.StatusPending,
	}
	if err := c.Items.Create(next); err != nil {
		return err
	}
	c.Log.Debug().
		Int("item_id", next.ID).
		Int("step_index", step.StepIndex).
		Time("scheduled_at", next.ScheduledAt).
		Msg("next follow-up step scheduled")
	return nil
}
