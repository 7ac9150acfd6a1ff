package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	appErrors "github.com/marklangat/waleads-backend/internal/errors"
	"github.com/marklangat/waleads-backend/internal/model"
)

func newMock(t *testing.T) (*ItemRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open stub database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &ItemRepository{DB: db}, mock
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "account_id", "conversation_id", "campaign_id", "kind", "destination", "payload",
		"gateway_instance", "sequence_id", "step_index", "scheduled_at", "status", "retry_count",
		"last_error", "cancel_reason", "gateway_message_id", "score_at_send", "stage_at_send",
		"created_at", "updated_at",
	})
}

func TestListDuePendingSelectsOldestFirst(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)

	rows := itemRows().
		AddRow(1, 1, 7, nil, "campaign", "+254700000001", "hi", "glow-main", nil, 0,
			now.Add(-2*time.Minute), "pending", 0, "", "", "", nil, nil, now, now).
		AddRow(2, 1, 8, nil, "campaign", "+254700000002", "hi", "glow-main", nil, 0,
			now.Add(-time.Minute), "pending", 1, "timeout", "", "", nil, nil, now, now)

	mock.ExpectQuery("SELECT (.+) FROM dispatch_items").
		WithArgs("campaign", 1, "pending", now, 3).
		WillReturnRows(rows)

	items, err := repo.ListDuePending("campaign", 1, now, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != 1 || items[1].ID != 2 {
		t.Errorf("unexpected items: %+v", items)
	}
	if items[1].RetryCount != 1 || items[1].LastError != "timeout" {
		t.Errorf("retry fields not scanned: %+v", items[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM dispatch_items WHERE id=").
		WithArgs(42).
		WillReturnRows(itemRows())

	_, err := repo.GetByID(42)
	var notFound *appErrors.ErrItemNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if notFound.ItemID != 42 {
		t.Errorf("expected item id 42, got %d", notFound.ItemID)
	}
}

func TestMarkSentUpdatesSnapshot(t *testing.T) {
	repo, mock := newMock(t)
	sentAt := time.Date(2024, 6, 4, 12, 0, 5, 0, time.UTC)

	mock.ExpectExec("UPDATE dispatch_items").
		WithArgs(model.StatusSent, "wamid-abc", 42, "qualifying", sentAt, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkSent(7, "wamid-abc", 42, "qualifying", sentAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkCancelledRecordsReason(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("UPDATE dispatch_items").
		WithArgs(model.StatusCancelled, "Client responded after scheduling", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkCancelled(7, "Client responded after scheduling"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExistsForCampaign(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT 1 FROM dispatch_items").
		WithArgs(3, 7).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	exists, err := repo.ExistsForCampaign(3, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected exists=true")
	}

	mock.ExpectQuery("SELECT 1 FROM dispatch_items").
		WithArgs(3, 8).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	exists, err = repo.ExistsForCampaign(3, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected exists=false")
	}
}

func TestStatsByCampaign(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("sent", 10).
		AddRow("pending", 4).
		AddRow("cancelled", 1)
	mock.ExpectQuery("SELECT status, COUNT").
		WithArgs(3).
		WillReturnRows(rows)

	stats, err := repo.StatsByCampaign(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats["sent"] != 10 || stats["pending"] != 4 || stats["cancelled"] != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats["total"] != 15 {
		t.Errorf("expected total 15, got %d", stats["total"])
	}
	if stats["failed"] != 0 {
		t.Errorf("expected zero failed, got %d", stats["failed"])
	}
}
