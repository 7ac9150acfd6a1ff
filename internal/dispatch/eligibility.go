package dispatch

import (
	"github.com/marklangat/waleads-backend/internal/model"
)

// Cancellation reasons recorded on vetoed items. Operator-facing, so they
// read as plain sentences.
const (
	ReasonPaused        = "Conversation paused by operator"
	ReasonHandedToHuman = "Conversation handed to human operator"
	ReasonTerminalStage = "Conversation reached terminal funnel stage"
	ReasonStale         = "Client responded after scheduling"
)

// EligibilityRules is the per-variant configuration of the filter.
type EligibilityRules struct {
	// StopAtStage vetoes conversations that reached this funnel stage.
	// Empty disables the check.
	StopAtStage string
}

// Evaluate runs the eligibility checks in order and short-circuits on the
// first failure. It returns ok=true to proceed, or ok=false with the
// cancellation reason. A veto is a policy decision, not a failure: it never
// touches the retry counter.
func Evaluate(rules EligibilityRules, item *model.DispatchableItem, conv *model.ConversationState) (reason string, ok bool) {
	if conv.PausedByOperator {
		return ReasonPaused, false
	}
	if conv.HandedToHuman {
		return ReasonHandedToHuman, false
	}
	if rules.StopAtStage != "" && conv.FunnelStage == rules.StopAtStage {
		return ReasonTerminalStage, false
	}
	// Race guard: a customer reply after scheduling invalidates the item's
	// premise. Cancel rather than talk past the reply.
	if conv.LastInboundAt != nil && conv.LastInboundAt.After(item.ScheduledAt) {
		return ReasonStale, false
	}
	return "", true
}
