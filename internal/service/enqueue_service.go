package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marklangat/waleads-backend/internal/model"
	"github.com/marklangat/waleads-backend/internal/queue"
)

// CampaignStore defines the campaign reads the enqueue path needs.
type CampaignStore interface {
	GetByID(id int) (*model.Campaign, error)
	UpdateStatus(campaignID int, status string) error
	GetContact(id int) (*model.Contact, error)
}

// ItemStore defines the item writes the enqueue path needs.
type ItemStore interface {
	Create(item *model.DispatchableItem) error
	ExistsForCampaign(campaignID, conversationID int) (bool, error)
	StatsByCampaign(campaignID int) (map[string]int, error)
}

// EnqueueJob is the intake message published to the broker when a campaign
// is released for sending.
type EnqueueJob struct {
	CampaignID int   `json:"campaign_id"`
	ContactIDs []int `json:"contact_ids"`
}

// EnqueueResult summarizes one intake pass.
type EnqueueResult struct {
	CampaignID    int   `json:"campaign_id"`
	ItemsCreated  int   `json:"items_created"`
	ItemsSkipped  int   `json:"items_skipped"`
	CreatedItemID []int `json:"created_item_ids"`
}

// EnqueueService turns campaign enqueue jobs into pending dispatchable
// items. Item creation is idempotent per campaign/conversation pair, so a
// redelivered job cannot double-queue a contact.
type EnqueueService struct {
	Campaigns CampaignStore
	Items     ItemStore
	Queue     queue.Queue
	Topic     string
	Log       zerolog.Logger
}

// Submit validates the campaign and publishes the enqueue job to the broker.
func (s *EnqueueService) Submit(campaignID int, contactIDs []int) error {
	campaign, err := s.Campaigns.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != "draft" && campaign.Status != "sending" {
		return fmt.Errorf("campaign cannot be enqueued in status: %s", campaign.Status)
	}
	if len(contactIDs) == 0 {
		return fmt.Errorf("no contacts to enqueue")
	}

	body, err := json.Marshal(EnqueueJob{CampaignID: campaignID, ContactIDs: contactIDs})
	if err != nil {
		return err
	}
	return s.Queue.Publish(s.Topic, body)
}

// Start registers the intake consumer on the broker.
func (s *EnqueueService) Start() error {
	return s.Queue.Subscribe(s.Topic, s.handleJob)
}

func (s *EnqueueService) handleJob(body []byte) error {
	var job EnqueueJob
	if err := json.Unmarshal(body, &job); err != nil {
		// Malformed jobs are dropped, not retried.
		s.Log.Error().Err(err).Msg("invalid enqueue job payload")
		return nil
	}

	result, err := s.ProcessJob(job)
	if err != nil {
		return err
	}
	s.Log.Info().
		Int("campaign_id", job.CampaignID).
		Int("created", result.ItemsCreated).
		Int("skipped", result.ItemsSkipped).
		Msg("campaign enqueue processed")
	return nil
}

// ProcessJob creates one pending item per contact that does not already have
// one for this campaign. Per-contact errors are logged and skipped so one
// bad contact never blocks the rest of the audience.
func (s *EnqueueService) ProcessJob(job EnqueueJob) (*EnqueueResult, error) {
	campaign, err := s.Campaigns.GetByID(job.CampaignID)
	if err != nil {
		return nil, err
	}

	scheduledAt := time.Now()
	if campaign.ScheduledAt != nil && campaign.ScheduledAt.After(scheduledAt) {
		scheduledAt = *campaign.ScheduledAt
	}

	result := &EnqueueResult{CampaignID: job.CampaignID, CreatedItemID: []int{}}
	for _, contactID := range job.ContactIDs {
		contact, err := s.Campaigns.GetContact(contactID)
		if err != nil {
			s.Log.Error().Err(err).Int("contact_id", contactID).Msg("failed to load contact")
			continue
		}
		if contact == nil {
			s.Log.Warn().Int("contact_id", contactID).Msg("contact not found, skipping")
			continue
		}

		exists, err := s.Items.ExistsForCampaign(campaign.ID, contact.ConversationID)
		if err != nil {
			s.Log.Error().Err(err).Int("contact_id", contactID).Msg("failed idempotency check")
			continue
		}
		if exists {
			result.ItemsSkipped++
			continue
		}

		campaignID := campaign.ID
		item := &model.DispatchableItem{
			AccountID:       campaign.AccountID,
			ConversationID:  contact.ConversationID,
			CampaignID:      &campaignID,
			Kind:            model.KindCampaign,
			Destination:     contact.Phone,
			Payload:         RenderTemplate(campaign.BaseTemplate, contact),
			GatewayInstance: campaign.GatewayInstance,
			ScheduledAt:     scheduledAt,
			Status:          model.StatusPending,
		}
		if err := s.Items.Create(item); err != nil {
			s.Log.Error().Err(err).Int("contact_id", contactID).Msg("failed to create item")
			continue
		}
		result.ItemsCreated++
		result.CreatedItemID = append(result.CreatedItemID, item.ID)
	}

	if campaign.Status != "sending" {
		if err := s.Campaigns.UpdateStatus(campaign.ID, "sending"); err != nil {
			return result, err
		}
	}
	return result, nil
}
