package whatsapp

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidPayload = errors.New("invalid inbound payload")

// Inbound is a text message received from a customer.
type Inbound struct {
	From  string
	Text  string
	Shape string
}

type inboundMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
}

type inboundPayload struct {
	Messages []inboundMessage `json:"messages"`
	Entry    []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type shape struct {
	name    string
	message func(p *inboundPayload) *inboundMessage
}

// shapes are tried in order; the first yielding sender and text wins.
var shapes = []shape{
	{
		name: "messages",
		message: func(p *inboundPayload) *inboundMessage {
			if len(p.Messages) == 0 {
				return nil
			}
			return &p.Messages[0]
		},
	},
	{
		name: "entry.changes.value.messages",
		message: func(p *inboundPayload) *inboundMessage {
			if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 || len(p.Entry[0].Changes[0].Value.Messages) == 0 {
				return nil
			}
			return &p.Entry[0].Changes[0].Value.Messages[0]
		},
	},
}

// ParseInbound extracts the sender and text. ok is false when no known shape
// carries both.
func ParseInbound(body []byte) (msg Inbound, ok bool, err error) {
	var p inboundPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Inbound{}, false, ErrInvalidPayload
	}

	for _, s := range shapes {
		m := s.message(&p)
		if m == nil || m.From == "" || m.Text == nil {
			continue
		}
		text := strings.TrimSpace(m.Text.Body)
		if text == "" {
			continue
		}
		return Inbound{From: m.From, Text: text, Shape: s.name}, true, nil
	}
	return Inbound{}, false, nil
}
