package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marklangat/waleads-backend/internal/model"
)

func TestVariantCadences(t *testing.T) {
	assert.Equal(t, 12, CampaignVariant().TicksPerHour)
	assert.Equal(t, 60, ReactivationVariant().TicksPerHour)
	assert.True(t, ReactivationVariant().SingleItemPerAccount)
}

func TestLiteralPayloadRejectsEmpty(t *testing.T) {
	v := CampaignVariant()
	_, err := v.Payload(context.Background(), &model.DispatchableItem{ID: 1}, nil, nil)
	assert.Error(t, err)

	text, err := v.Payload(context.Background(), &model.DispatchableItem{ID: 1, Payload: "hi"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestInstanceResolution(t *testing.T) {
	item := &model.DispatchableItem{ID: 1, GatewayInstance: "glow-main"}
	account := &model.Account{ID: 9, GatewayInstance: "acct-inst"}

	// Campaign items carry their own instance.
	inst, err := CampaignVariant().ResolveInstance(item, account)
	require.NoError(t, err)
	assert.Equal(t, "glow-main", inst)

	// Reactivation resolves through the account.
	inst, err = ReactivationVariant().ResolveInstance(item, account)
	require.NoError(t, err)
	assert.Equal(t, "acct-inst", inst)

	_, err = ReactivationVariant().ResolveInstance(item, &model.Account{ID: 9})
	assert.Error(t, err)
}

func TestCampaignDelayRange(t *testing.T) {
	v := CampaignVariant()
	for i := 0; i < 100; i++ {
		d := v.Delay()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}

func TestFollowupDelayFixed(t *testing.T) {
	v := FollowupVariant(nil, stubSteps{}, stubTranscripts{})
	assert.Equal(t, 500*time.Millisecond, v.Delay())
	assert.Equal(t, model.StageBooked, v.Rules.StopAtStage)
}

type stubSteps struct {
	step *model.FollowupStep
}

func (s stubSteps) GetStep(sequenceID, stepIndex int) (*model.FollowupStep, error) {
	return s.step, nil
}

type stubTranscripts struct{}

func (stubTranscripts) RecentTranscript(conversationID, n int) ([]model.TranscriptEntry, error) {
	return []model.TranscriptEntry{{Role: "customer", Text: "what times do you have?"}}, nil
}

type stubGenerator struct {
	text string
	err  error

	gotContext     string
	gotInstruction string
	gotHistory     int
}

func (g *stubGenerator) Generate(ctx context.Context, promptContext string, history []model.TranscriptEntry, instruction string) (string, error) {
	g.gotContext = promptContext
	g.gotInstruction = instruction
	g.gotHistory = len(history)
	return g.text, g.err
}

func TestFollowupPayloadGenerates(t *testing.T) {
	gen := &stubGenerator{text: "Hi! How about Tuesday at 3pm?"}
	seq := 5
	v := FollowupVariant(gen,
		stubSteps{step: &model.FollowupStep{SequenceID: 5, StepIndex: 1, Instruction: "offer slots"}},
		stubTranscripts{})

	item := &model.DispatchableItem{ID: 1, SequenceID: &seq, StepIndex: 1}
	conv := &model.ConversationState{ID: 7}
	account := &model.Account{ID: 1, PromptContext: "clinic assistant"}

	text, err := v.Payload(context.Background(), item, conv, account)
	require.NoError(t, err)
	assert.Equal(t, "Hi! How about Tuesday at 3pm?", text)
	assert.Equal(t, "clinic assistant", gen.gotContext)
	assert.Equal(t, "offer slots", gen.gotInstruction)
	assert.Equal(t, 1, gen.gotHistory)
}

func TestFollowupPayloadPropagatesGenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("empty completion")}
	seq := 5
	v := FollowupVariant(gen,
		stubSteps{step: &model.FollowupStep{SequenceID: 5, StepIndex: 0, Instruction: "remind"}},
		stubTranscripts{})

	item := &model.DispatchableItem{ID: 1, SequenceID: &seq}
	_, err := v.Payload(context.Background(), item, &model.ConversationState{ID: 7}, &model.Account{ID: 1})
	assert.Error(t, err)
}

func TestFollowupPayloadMissingStep(t *testing.T) {
	seq := 5
	v := FollowupVariant(&stubGenerator{}, stubSteps{}, stubTranscripts{})
	item := &model.DispatchableItem{ID: 1, SequenceID: &seq, StepIndex: 9}
	_, err := v.Payload(context.Background(), item, &model.ConversationState{ID: 7}, &model.Account{ID: 1})
	assert.Error(t, err)
}
