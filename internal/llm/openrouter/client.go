// Package openrouter implements llm.Client against the OpenRouter chat completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meeting-backend/internal/llm"
	"meeting-backend/internal/shared/telemetry"
)

const (
	DefaultAPIURL  = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel   = "google/gemini-2.5-flash"
	DefaultReferer = "http://localhost:3000"
	DefaultTitle   = "Meeting Analysis Dashboard"

	maxErrorBody = 4 << 10
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	APIKey      string
	APIURL      string
	Model       string
	Referer     string
	Title       string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client implements llm.Client using OpenRouter Chat Completions.
type Client struct {
	apiKey      string
	apiURL      string
	model       string
	referer     string
	title       string
	temperature float64
	httpClient  *http.Client
}

// NewClient constructs a new OpenRouter client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, llm.ErrNotConfigured
	}
	c := &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		apiURL:      orDefault(opts.APIURL, DefaultAPIURL),
		model:       orDefault(opts.Model, DefaultModel),
		referer:     orDefault(opts.Referer, DefaultReferer),
		title:       orDefault(opts.Title, DefaultTitle),
		temperature: opts.Temperature,
		httpClient:  opts.HTTPClient,
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c, nil
}

func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message *chatMessage `json:"message"`
		Text    string       `json:"text"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// Complete sends a system and user message and returns the reply content.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    c.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", c.title)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("%w: openrouter request timeout: %v", llm.ErrUpstreamAPI, err)
		}
		return "", fmt.Errorf("%w: %v", llm.ErrUpstreamAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: OpenRouter API error: %d - %s", llm.ErrUpstreamAPI, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", llm.ErrUpstreamAPI, err)
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: openrouter response parse: %v", llm.ErrUpstreamAPI, err)
	}

	content := ""
	if len(parsed.Choices) > 0 {
		choice := parsed.Choices[0]
		if choice.Message != nil && choice.Message.Content != "" {
			content = choice.Message.Content
		} else {
			content = choice.Text
		}
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: No content in API response", llm.ErrUpstreamAPI)
	}

	fields := map[string]any{
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
	return content, nil
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

var _ llm.Client = (*Client)(nil)
