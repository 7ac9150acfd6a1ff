package repository

import (
	"database/sql"
	"time"

	"github.com/marklangat/waleads-backend/internal/model"
)

type ConversationRepository struct {
	DB *sql.DB
}

// GetByID fetches a conversation's state. Returns nil, nil when not found.
func (r *ConversationRepository) GetByID(id int) (*model.ConversationState, error) {
	query := `
		SELECT id, account_id, phone, paused_by_operator, handed_to_human,
		       funnel_stage, lead_score, last_inbound_at, last_bot_contact_at, outbound_count
		FROM conversations
		WHERE id = $1
	`
	var c model.ConversationState
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID,
		&c.AccountID,
		&c.Phone,
		&c.PausedByOperator,
		&c.HandedToHuman,
		&c.FunnelStage,
		&c.LeadScore,
		&c.LastInboundAt,
		&c.LastBotContactAt,
		&c.OutboundCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// RecordBotContact bumps the conversation's outbound aggregates after a
// successful send.
func (r *ConversationRepository) RecordBotContact(id int, at time.Time) error {
	query := `
		UPDATE conversations
		SET last_bot_contact_at = $1, outbound_count = outbound_count + 1
		WHERE id = $2
	`
	_, err := r.DB.Exec(query, at, id)
	return err
}

// RecentTranscript returns the conversation's last n messages, oldest first.
func (r *ConversationRepository) RecentTranscript(conversationID, n int) ([]model.TranscriptEntry, error) {
	query := `
		SELECT role, text FROM (
			SELECT role, text, created_at
			FROM conversation_messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) t
		ORDER BY created_at ASC
	`
	rows, err := r.DB.Query(query, conversationID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.TranscriptEntry{}
	for rows.Next() {
		var e model.TranscriptEntry
		if err := rows.Scan(&e.Role, &e.Text); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
