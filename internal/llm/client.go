// Package llm calls OpenAI-compatible chat completion endpoints, trying each
// configured provider in order.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var ErrNoProviders = errors.New("no LLM provider configured")

type Provider struct {
	Name   string
	URL    string
	APIKey string
	Model  string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	JSON        bool
	Temperature float64
	MaxTokens   int
}

type Client struct {
	providers []Provider
	client    *http.Client
}

// NewClient keeps only providers that have an API key.
func NewClient(providers []Provider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	configured := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.APIKey != "" && p.URL != "" {
			configured = append(configured, p)
		}
	}
	return &Client{
		providers: configured,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Available() bool { return len(c.providers) > 0 }

// Complete returns the first provider's answer that succeeds.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrNoProviders
	}

	var lastErr error
	for i, p := range c.providers {
		content, err := c.callProvider(ctx, p, messages, opts)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if i+1 < len(c.providers) {
			slog.Warn("LLM provider failed, trying next", "provider", p.Name, "next", c.providers[i+1].Name, "error", err)
		}
	}
	return "", fmt.Errorf("all LLM providers failed: %w", lastErr)
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) callProvider(ctx context.Context, p Provider, messages []Message, opts Options) (string, error) {
	payload := chatRequest{
		Model:       p.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %d: %s", p.Name, resp.StatusCode, string(body))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return "", err
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", p.Name)
	}

	content := strings.TrimSpace(ExtractContent(chat.Choices[0].Message.Content))
	if content == "" {
		return "", fmt.Errorf("empty content from %s", p.Name)
	}
	if opts.JSON {
		content = StripCodeFence(content)
	}
	return content, nil
}

// ExtractContent reads message content sent as a plain string, an array of
// parts ({"text": "..."} or {"text": {"value": "..."}}), or a single part.
func ExtractContent(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil {
			return ""
		}
		texts := make([]string, 0, len(parts))
		for _, part := range parts {
			if t := ExtractContent(part); t != "" {
				texts = append(texts, t)
			}
		}
		return strings.TrimSpace(strings.Join(texts, " "))
	case '{':
		var part struct {
			Text json.RawMessage `json:"text"`
		}
		if err := json.Unmarshal(raw, &part); err != nil || len(part.Text) == 0 {
			return ""
		}
		if t := bytes.TrimSpace(part.Text); len(t) > 0 && t[0] == '{' {
			var v struct {
				Value string `json:"value"`
			}
			if err := json.Unmarshal(t, &v); err == nil {
				return v.Value
			}
			return ""
		}
		return ExtractContent(part.Text)
	}
	return ""
}

// StripCodeFence removes a surrounding ```json fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
