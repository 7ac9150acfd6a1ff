package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marklangat/waleads-backend/internal/model"
)

// PayloadFunc composes the outbound text for one item. Campaign and
// reactivation items carry literal payloads; follow-up items generate theirs
// per step.
type PayloadFunc func(ctx context.Context, item *model.DispatchableItem, conv *model.ConversationState, account *model.Account) (string, error)

// InstanceFunc resolves the gateway instance an item goes out through.
type InstanceFunc func(item *model.DispatchableItem, account *model.Account) (string, error)

// Variant configures one worker's instantiation of the shared pipeline.
type Variant struct {
	Kind                 string
	TicksPerHour         int
	SingleItemPerAccount bool
	Rules                EligibilityRules
	Delay                DelayFunc
	Payload              PayloadFunc
	ResolveInstance      InstanceFunc
}

// Lease guards a tick against overlapping runs of the same worker kind.
type Lease interface {
	TryAcquire(ctx context.Context, workerKind string) (ok bool, release func() error, err error)
}

// Pipeline is one full dispatch pass: work-hours gate, slot allocation,
// eligibility filtering, the send itself, and the state commit. One
// Pipeline instance serves one worker kind.
type Pipeline struct {
	Variant       Variant
	Items         ItemStore
	Policies      PolicyStore
	Accounts      AccountStore
	Conversations ConversationStore
	Executor      *Executor
	Committer     *Committer
	Lease         Lease // optional
	Log           zerolog.Logger

	// Now and Sleep are swappable for tests.
	Now   func() time.Time
	Sleep func(time.Duration)
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// RunTick executes one dispatch pass. Accounts are processed sequentially so
// the inter-send delay paces the gateway as intended; per-account and
// per-item errors are logged and isolated so one bad row never aborts the
// rest of the pass.
func (p *Pipeline) RunTick(ctx context.Context) error {
	now := p.now()

	if p.Lease != nil {
		ok, release, err := p.Lease.TryAcquire(ctx, p.Variant.Kind)
		if err != nil {
			return fmt.Errorf("acquire tick lease: %w", err)
		}
		if !ok {
			p.Log.Debug().Str("kind", p.Variant.Kind).Msg("previous tick still holds the lease, skipping")
			return nil
		}
		defer func() {
			if err := release(); err != nil {
				p.Log.Error().Err(err).Str("kind", p.Variant.Kind).Msg("failed to release tick lease")
			}
		}()
	}

	accounts, err := p.Items.AccountsWithDue(p.Variant.Kind, now)
	if err != nil {
		return fmt.Errorf("list accounts with due items: %w", err)
	}

	for _, accountID := range accounts {
		if err := p.runAccount(ctx, accountID, now); err != nil {
			p.Log.Error().Err(err).
				Str("kind", p.Variant.Kind).
				Int("account_id", accountID).
				Msg("account pass failed")
		}
	}
	return nil
}

func (p *Pipeline) runAccount(ctx context.Context, accountID int, now time.Time) error {
	policy, err := p.Policies.GetByAccountID(accountID)
	if err != nil {
		return fmt.Errorf("load send policy: %w", err)
	}
	if policy == nil {
		// No policy means zero eligible slots, not an error.
		p.Log.Debug().Int("account_id", accountID).Msg("no send policy, skipping account")
		return nil
	}
	if !policy.AutopilotEnabled {
		p.Log.Debug().Int("account_id", accountID).Msg("autopilot disabled, skipping account")
		return nil
	}
	if !WithinWindow(policy, now) {
		p.Log.Debug().Int("account_id", accountID).Msg("outside work hours, skipping account")
		return nil
	}

	limit := SlotLimit(policy, p.Variant.TicksPerHour)
	if p.Variant.SingleItemPerAccount && limit > 1 {
		limit = 1
	}

	// Hard daily cap: clamp the smoothed per-tick slot by what the account
	// has actually sent since its local midnight.
	sentToday, err := p.Items.CountSentSince(accountID, StartOfLocalDay(policy, now))
	if err != nil {
		return fmt.Errorf("count sends today: %w", err)
	}
	if remaining := policy.DailyMessageCap - sentToday; remaining < limit {
		limit = remaining
	}
	if limit <= 0 {
		return nil
	}

	items, err := p.Items.ListDuePending(p.Variant.Kind, accountID, now, limit)
	if err != nil {
		return fmt.Errorf("list due items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	account, err := p.Accounts.GetByID(accountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if account == nil {
		return fmt.Errorf("account %d not found", accountID)
	}

	attempted := 0
	for _, item := range items {
		didAttempt, err := p.runItemGuarded(ctx, item, account, policy, attempted > 0)
		if err != nil {
			p.Log.Error().Err(err).
				Int("item_id", item.ID).
				Int("account_id", accountID).
				Msg("item pass failed")
		}
		if didAttempt {
			attempted++
		}
	}
	return nil
}

// runItemGuarded wraps runItem with a panic boundary so a malformed item
// cannot abort the remaining batch.
func (p *Pipeline) runItemGuarded(ctx context.Context, item *model.DispatchableItem, account *model.Account, policy *model.AccountSendPolicy, pace bool) (attempted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing item %d: %v", item.ID, r)
		}
	}()
	return p.runItem(ctx, item, account, policy, pace)
}

func (p *Pipeline) runItem(ctx context.Context, item *model.DispatchableItem, account *model.Account, policy *model.AccountSendPolicy, pace bool) (bool, error) {
	conv, err := p.Conversations.GetByID(item.ConversationID)
	if err != nil {
		return false, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil {
		return false, fmt.Errorf("conversation %d not found", item.ConversationID)
	}

	if reason, ok := Evaluate(p.Variant.Rules, item, conv); !ok {
		return false, p.Committer.Cancel(item, reason)
	}

	instance, err := p.Variant.ResolveInstance(item, account)
	if err != nil {
		return true, p.Committer.Commit(item, conv, policy, model.DispatchOutcome{Success: false, Err: err})
	}

	text, err := p.Variant.Payload(ctx, item, conv, account)
	if err != nil {
		// Generation failures are transient: they feed the retry counter.
		return true, p.Committer.Commit(item, conv, policy, model.DispatchOutcome{Success: false, Err: err})
	}

	if pace && p.Variant.Delay != nil {
		p.sleep(p.Variant.Delay())
	}

	outcome := p.Executor.Send(ctx, instance, item, text)
	return true, p.Committer.Commit(item, conv, policy, outcome)
}
