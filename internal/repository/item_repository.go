package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/marklangat/waleads-backend/internal/errors"
	"github.com/marklangat/waleads-backend/internal/model"
)

const itemColumns = `id, account_id, conversation_id, campaign_id, kind, destination, payload,
		gateway_instance, sequence_id, step_index, scheduled_at, status, retry_count,
		last_error, cancel_reason, gateway_message_id, score_at_send, stage_at_send,
		created_at, updated_at`

type ItemRepository struct {
	DB *sql.DB
}

// Create inserts a new dispatchable item and fills in its ID.
func (r *ItemRepository) Create(item *model.DispatchableItem) error {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = model.StatusPending
	}

	query := `
		INSERT INTO dispatch_items
		(account_id, conversation_id, campaign_id, kind, destination, payload, gateway_instance,
		 sequence_id, step_index, scheduled_at, status, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.DB.QueryRow(
		query,
		item.AccountID,
		item.ConversationID,
		item.CampaignID,
		item.Kind,
		item.Destination,
		item.Payload,
		item.GatewayInstance,
		item.SequenceID,
		item.StepIndex,
		item.ScheduledAt,
		item.Status,
		item.RetryCount,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID)
}

// GetByID fetches one item.
func (r *ItemRepository) GetByID(id int) (*model.DispatchableItem, error) {
	query := `SELECT ` + itemColumns + ` FROM dispatch_items WHERE id=$1`
	item, err := scanItem(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewItemNotFound(id)
	}
	return item, err
}

// ExistsForCampaign reports whether an item was already created for the
// campaign/conversation pair. Used for idempotent campaign enqueue.
func (r *ItemRepository) ExistsForCampaign(campaignID, conversationID int) (bool, error) {
	query := `
		SELECT 1 FROM dispatch_items
		WHERE campaign_id = $1 AND conversation_id = $2
		LIMIT 1
	`
	var tmp int
	err := r.DB.QueryRow(query, campaignID, conversationID).Scan(&tmp)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AccountsWithDue returns the distinct accounts that have pending items of
// the given kind due at or before now.
func (r *ItemRepository) AccountsWithDue(kind string, now time.Time) ([]int, error) {
	query := `
		SELECT DISTINCT account_id FROM dispatch_items
		WHERE kind = $1 AND status = $2 AND scheduled_at <= $3
		ORDER BY account_id
	`
	rows, err := r.DB.Query(query, kind, model.StatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListDuePending returns up to limit pending items of one kind for one
// account, due at or before now, oldest scheduled first.
func (r *ItemRepository) ListDuePending(kind string, accountID int, now time.Time, limit int) ([]*model.DispatchableItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM dispatch_items
		WHERE kind = $1 AND account_id = $2 AND status = $3 AND scheduled_at <= $4
		ORDER BY scheduled_at ASC
		LIMIT $5
	`
	rows, err := r.DB.Query(query, kind, accountID, model.StatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*model.DispatchableItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkSent transitions an item to sent, recording the gateway message id and
// the lead-score snapshot taken at send time.
func (r *ItemRepository) MarkSent(id int, gatewayMessageID string, scoreAtSend int, stageAtSend string, sentAt time.Time) error {
	query := `
		UPDATE dispatch_items
		SET status=$1, gateway_message_id=$2, score_at_send=$3, stage_at_send=$4,
		    last_error='', sent_at=$5, updated_at=$5
		WHERE id=$6
	`
	_, err := r.DB.Exec(query, model.StatusSent, gatewayMessageID, scoreAtSend, stageAtSend, sentAt, id)
	return err
}

// MarkRetryPending records a transient failure: the retry counter advances
// and the item stays pending for a later tick.
func (r *ItemRepository) MarkRetryPending(id, retryCount int, lastError string) error {
	query := `
		UPDATE dispatch_items
		SET status=$1, retry_count=$2, last_error=$3, updated_at=$4
		WHERE id=$5
	`
	_, err := r.DB.Exec(query, model.StatusPending, retryCount, lastError, time.Now(), id)
	return err
}

// MarkFailed transitions an item to failed after its retry budget is spent.
func (r *ItemRepository) MarkFailed(id, retryCount int, lastError string) error {
	query := `
		UPDATE dispatch_items
		SET status=$1, retry_count=$2, last_error=$3, updated_at=$4
		WHERE id=$5
	`
	_, err := r.DB.Exec(query, model.StatusFailed, retryCount, lastError, time.Now(), id)
	return err
}

// MarkCancelled transitions an item to cancelled with the veto reason.
func (r *ItemRepository) MarkCancelled(id int, reason string) error {
	query := `
		UPDATE dispatch_items
		SET status=$1, cancel_reason=$2, updated_at=$3
		WHERE id=$4
	`
	_, err := r.DB.Exec(query, model.StatusCancelled, reason, time.Now(), id)
	return err
}

// CountSentSince counts the account's items sent at or after the cutoff.
// The pipeline passes the start of the account-local day to enforce the
// daily cap.
func (r *ItemRepository) CountSentSince(accountID int, cutoff time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM dispatch_items
		WHERE account_id = $1 AND status = $2 AND sent_at >= $3
	`
	var n int
	err := r.DB.QueryRow(query, accountID, model.StatusSent, cutoff).Scan(&n)
	return n, err
}

// StatsByCampaign returns item counts by status for one campaign.
func (r *ItemRepository) StatsByCampaign(campaignID int) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM dispatch_items
		WHERE campaign_id = $1
		GROUP BY status
	`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		"total":     0,
		"pending":   0,
		"sent":      0,
		"failed":    0,
		"cancelled": 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		if _, ok := stats[status]; ok {
			stats[status] = count
		}
		stats["total"] += count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.DispatchableItem, error) {
	var item model.DispatchableItem
	err := row.Scan(
		&item.ID,
		&item.AccountID,
		&item.ConversationID,
		&item.CampaignID,
		&item.Kind,
		&item.Destination,
		&item.Payload,
		&item.GatewayInstance,
		&item.SequenceID,
		&item.StepIndex,
		&item.ScheduledAt,
		&item.Status,
		&item.RetryCount,
		&item.LastError,
		&item.CancelReason,
		&item.GatewayMessageID,
		&item.ScoreAtSend,
		&item.StageAtSend,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
