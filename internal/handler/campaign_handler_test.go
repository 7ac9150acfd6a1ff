package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/marklangat/waleads-backend/internal/model"
	"github.com/marklangat/waleads-backend/internal/queue"
	"github.com/marklangat/waleads-backend/internal/service"
)

type stubCampaigns struct {
	campaign *model.Campaign
}

func (s *stubCampaigns) GetByID(id int) (*model.Campaign, error)      { return s.campaign, nil }
func (s *stubCampaigns) UpdateStatus(campaignID int, st string) error { return nil }
func (s *stubCampaigns) GetContact(id int) (*model.Contact, error)    { return nil, nil }

type stubItems struct {
	stats map[string]int
}

func (s *stubItems) Create(item *model.DispatchableItem) error { return nil }
func (s *stubItems) ExistsForCampaign(campaignID, conversationID int) (bool, error) {
	return false, nil
}
func (s *stubItems) StatsByCampaign(campaignID int) (map[string]int, error) {
	return s.stats, nil
}

func newTestRouter(campaigns *stubCampaigns, items *stubItems) *chi.Mux {
	q := queue.NewInMemoryQueue(zerolog.Nop())
	// A no-op subscriber so Publish finds a consumer.
	_ = q.Subscribe("campaign_enqueue", func([]byte) error { return nil })

	svc := &service.EnqueueService{
		Campaigns: campaigns,
		Items:     items,
		Queue:     q,
		Topic:     "campaign_enqueue",
		Log:       zerolog.Nop(),
	}
	h := &CampaignHandler{Enqueue: svc, Items: items}
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&stubCampaigns{}, &stubItems{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEnqueueCampaignAccepted(t *testing.T) {
	campaigns := &stubCampaigns{campaign: &model.Campaign{ID: 3, Status: "draft"}}
	r := newTestRouter(campaigns, &stubItems{})

	req := httptest.NewRequest(http.MethodPost, "/campaigns/3/enqueue",
		strings.NewReader(`{"contact_ids":[10,11]}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestEnqueueCampaignRejectsBadStatus(t *testing.T) {
	campaigns := &stubCampaigns{campaign: &model.Campaign{ID: 3, Status: "done"}}
	r := newTestRouter(campaigns, &stubItems{})

	req := httptest.NewRequest(http.MethodPost, "/campaigns/3/enqueue",
		strings.NewReader(`{"contact_ids":[10]}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestEnqueueCampaignInvalidID(t *testing.T) {
	r := newTestRouter(&stubCampaigns{}, &stubItems{})
	req := httptest.NewRequest(http.MethodPost, "/campaigns/abc/enqueue",
		strings.NewReader(`{"contact_ids":[10]}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCampaignStats(t *testing.T) {
	items := &stubItems{stats: map[string]int{"total": 12, "sent": 10, "failed": 2}}
	r := newTestRouter(&stubCampaigns{}, items)

	req := httptest.NewRequest(http.MethodGet, "/campaigns/3/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		CampaignID int            `json:"campaign_id"`
		Stats      map[string]int `json:"stats"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Stats["sent"] != 10 {
		t.Errorf("unexpected stats: %+v", body.Stats)
	}
}
