package dispatch

import (
	"time"

	"github.com/marklangat/waleads-backend/internal/model"
)

// Store contracts consumed by the pipeline. The repository package provides
// the Postgres implementations; tests substitute in-memory fakes.

type ItemStore interface {
	AccountsWithDue(kind string, now time.Time) ([]int, error)
	ListDuePending(kind string, accountID int, now time.Time, limit int) ([]*model.DispatchableItem, error)
	Create(item *model.DispatchableItem) error
	MarkSent(id int, gatewayMessageID string, scoreAtSend int, stageAtSend string, sentAt time.Time) error
	MarkRetryPending(id, retryCount int, lastError string) error
	MarkFailed(id, retryCount int, lastError string) error
	MarkCancelled(id int, reason string) error
	CountSentSince(accountID int, cutoff time.Time) (int, error)
}

type ConversationStore interface {
	GetByID(id int) (*model.ConversationState, error)
	RecordBotContact(id int, at time.Time) error
}

type PolicyStore interface {
	GetByAccountID(accountID int) (*model.AccountSendPolicy, error)
}

type AccountStore interface {
	GetByID(id int) (*model.Account, error)
}

type FollowupStore interface {
	GetStep(sequenceID, stepIndex int) (*model.FollowupStep, error)
}
