package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/marklangat/waleads-backend/internal/config"
	appErrors "github.com/marklangat/waleads-backend/internal/errors"
	"github.com/marklangat/waleads-backend/internal/model"
)

// Client composes follow-up message text through an OpenAI-compatible chat
// completion API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(cfg config.GenAIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces follow-up text from the account's prompt context, the
// recent conversation history, and the step's instruction. An empty
// completion is reported as ErrEmptyCompletion, which callers treat as a
// transient failure.
func (c *Client) Generate(ctx context.Context, promptContext string, history []model.TranscriptEntry, instruction string) (string, error) {
	messages := []chatMessage{{Role: "system", Content: promptContext}}
	for _, e := range history {
		role := "assistant"
		if e.Role == "customer" {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: e.Text})
	}
	messages = append(messages, chatMessage{Role: "system", Content: instruction})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
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

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if out.Error != nil {
			return "", fmt.Errorf("generation error: %s", out.Error.Message)
		}
		return "", fmt.Errorf("generation service returned HTTP %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", appErrors.ErrEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", appErrors.ErrEmptyCompletion
	}
	return text, nil
}
