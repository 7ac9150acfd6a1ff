package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/marklangat/waleads-backend/internal/dispatch"
	"github.com/marklangat/waleads-backend/internal/model"
)

// Transcript length fed to the generation service for follow-up payloads.
const followupHistoryDepth = 20

// Generator is the message-generation contract for follow-up payloads.
type Generator interface {
	Generate(ctx context.Context, promptContext string, history []model.TranscriptEntry, instruction string) (string, error)
}

// TranscriptStore provides conversation history for generation.
type TranscriptStore interface {
	RecentTranscript(conversationID, n int) ([]model.TranscriptEntry, error)
}

func literalPayload(_ context.Context, item *model.DispatchableItem, _ *model.ConversationState, _ *model.Account) (string, error) {
	if item.Payload == "" {
		return "", fmt.Errorf("item %d has no payload", item.ID)
	}
	return item.Payload, nil
}

func itemInstance(item *model.DispatchableItem, _ *model.Account) (string, error) {
	if item.GatewayInstance == "" {
		return "", fmt.Errorf("item %d has no gateway instance", item.ID)
	}
	return item.GatewayInstance, nil
}

func accountInstance(_ *model.DispatchableItem, account *model.Account) (string, error) {
	if account.GatewayInstance == "" {
		return "", fmt.Errorf("account %d has no gateway instance", account.ID)
	}
	return account.GatewayInstance, nil
}

// CampaignVariant: 5-minute cadence, slot-limited batches of pre-rendered
// payloads, instance taken from the item itself.
func CampaignVariant() dispatch.Variant {
	return dispatch.Variant{
		Kind:            model.KindCampaign,
		TicksPerHour:    12,
		Delay:           dispatch.UniformDelay(time.Second, 3*time.Second),
		Payload:         literalPayload,
		ResolveInstance: itemInstance,
	}
}

// ReactivationVariant: 1-minute cadence, at most one item per account per
// tick, instance resolved through the account.
func ReactivationVariant() dispatch.Variant {
	return dispatch.Variant{
		Kind:                 model.KindReactivation,
		TicksPerHour:         60,
		SingleItemPerAccount: true,
		Delay:                dispatch.UniformDelay(time.Second, 3*time.Second),
		Payload:              literalPayload,
		ResolveInstance:      accountInstance,
	}
}

// FollowupVariant: 1-minute cadence, payload generated per sequence step,
// outreach stopped once a consultation is booked.
func FollowupVariant(gen Generator, steps dispatch.FollowupStore, transcripts TranscriptStore) dispatch.Variant {
	payload := func(ctx context.Context, item *model.DispatchableItem, conv *model.ConversationState, account *model.Account) (string, error) {
		if item.SequenceID == nil {
			return "", fmt.Errorf("follow-up item %d has no sequence", item.ID)
		}
		step, err := steps.GetStep(*item.SequenceID, item.StepIndex)
		if err != nil {
			return "", err
		}
		if step == nil {
			return "", fmt.Errorf("sequence %d has no step %d", *item.SequenceID, item.StepIndex)
		}
		history, err := transcripts.RecentTranscript(conv.ID, followupHistoryDepth)
		if err != nil {
			return "", err
		}
		return gen.Generate(ctx, account.PromptContext, history, step.Instruction)
	}

	return dispatch.Variant{
		Kind:            model.KindFollowup,
		TicksPerHour:    60,
		Rules:           dispatch.EligibilityRules{StopAtStage: model.StageBooked},
		Delay:           dispatch.FixedDelay(500 * time.Millisecond),
		Payload:         payload,
		ResolveInstance: accountInstance,
	}
}
