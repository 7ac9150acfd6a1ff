package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/marklangat/waleads-backend/internal/errors"
	"github.com/marklangat/waleads-backend/internal/model"
)

type CampaignRepository struct {
	DB *sql.DB
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `
		SELECT id, account_id, name, status, base_template, gateway_instance,
		       scheduled_at, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID,
		&c.AccountID,
		&c.Name,
		&c.Status,
		&c.BaseTemplate,
		&c.GatewayInstance,
		&c.ScheduledAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now(), campaignID)
	return err
}

// GetContact fetches one campaign recipient. Returns nil, nil when not found.
func (r *CampaignRepository) GetContact(id int) (*model.Contact, error) {
	query := `
		SELECT id, account_id, conversation_id, phone, first_name, last_name, city
		FROM contacts
		WHERE id = $1
	`
	var c model.Contact
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID,
		&c.AccountID,
		&c.ConversationID,
		&c.Phone,
		&c.FirstName,
		&c.LastName,
		&c.City,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
