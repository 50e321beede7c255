// Package whatsapp sends text messages through the 360dialog WhatsApp
// Business API and parses inbound webhook payloads.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/palpitesia/palpites-backend/internal/phone"
)

// Codes meaning the 24-hour customer service window is closed.
const (
	CodeReengagement       = 131047
	CodeReengagementLegacy = 470
)

// SendError is a non-2xx answer from the gateway.
type SendError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *SendError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("whatsapp send failed (%d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("whatsapp send failed (%d): %s", e.StatusCode, e.Message)
}

// IsReengagementRequired reports whether err says the recipient must message
// us first before free-form text can be delivered.
func IsReengagementRequired(err error) bool {
	var se *SendError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == CodeReengagement || se.Code == CodeReengagementLegacy
}

type Client struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type textBody struct {
	Body string `json:"body"`
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Errors []struct {
		Code    int    `json:"code"`
		Title   string `json:"title"`
		Details string `json:"details"`
	} `json:"errors"`
}

// Send delivers one text message to the digits-only number to.
func (c *Client) Send(ctx context.Context, to, body string) error {
	reqBody, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("D360-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return parseSendError(resp.StatusCode, respBody)
}

func parseSendError(status int, body []byte) *SendError {
	se := &SendError{StatusCode: status, Message: string(body)}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return se
	}
	switch {
	case er.Error != nil:
		se.Code = er.Error.Code
		se.Message = er.Error.Message
	case len(er.Errors) > 0:
		se.Code = er.Errors[0].Code
		se.Message = er.Errors[0].Title
		if er.Errors[0].Details != "" {
			se.Message += ": " + er.Errors[0].Details
		}
	}
	return se
}

// DryRunSender logs messages instead of sending them.
type DryRunSender struct{}

func (DryRunSender) Send(_ context.Context, to, body string) error {
	slog.Info("dry run: whatsapp message not sent", "phone", phone.Mask(to), "chars", len([]rune(body)))
	return nil
}
