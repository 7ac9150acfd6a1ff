package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/marklangat/waleads-backend/internal/config"
)

// Client talks to the WhatsApp gateway's HTTP API. A token-bucket limiter
// caps the process-wide request rate toward the gateway, independent of the
// per-account slot math.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg config.GatewayConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type sendRequest struct {
	Instance       string `json:"instance"`
	To             string `json:"to"`
	Text           string `json:"text"`
	IdempotencyKey string `json:"idempotency_key"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// SendText delivers one text message through the named gateway instance and
// returns the gateway-assigned message id. Every call carries a fresh
// idempotency key; deduplication beyond that is the gateway's concern.
func (c *Client) SendText(ctx context.Context, instance, to, text string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(sendRequest{
		Instance:       instance,
		To:             to,
		Text:           text,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if out.Error != "" {
			return "", fmt.Errorf("gateway error: %s", out.Error)
		}
		return "", fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)
	}
	if out.MessageID == "" {
		return "", fmt.Errorf("gateway returned no message id")
	}
	return out.MessageID, nil
}
