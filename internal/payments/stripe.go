// Package payments wraps the Stripe API calls used by checkout and the
// webhook endpoint.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrNotConfigured    = errors.New("stripe secret key not configured")
	ErrWebhookSecret    = errors.New("stripe webhook secret not configured")
	ErrInvalidSignature = errors.New("invalid stripe signature")
)

// CheckoutRequest describes a subscription-mode Checkout Session.
type CheckoutRequest struct {
	PriceID       string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

type Client struct {
	api           *client.API
	configured    bool
	webhookSecret string
}

type Option func(*stripe.BackendConfig)

// WithBackendURL points API calls at another host. Used by tests.
func WithBackendURL(url string) Option {
	return func(c *stripe.BackendConfig) {
		c.URL = stripe.String(url)
		c.MaxNetworkRetries = stripe.Int64(0)
	}
}

func New(secretKey, webhookSecret string, opts ...Option) *Client {
	c := &Client{
		api:           &client.API{},
		configured:    secretKey != "",
		webhookSecret: webhookSecret,
	}

	var backends *stripe.Backends
	if len(opts) > 0 {
		cfg := &stripe.BackendConfig{}
		for _, opt := range opts {
			opt(cfg)
		}
		backends = &stripe.Backends{API: stripe.GetBackendWithConfig(stripe.APIBackend, cfg)}
	}
	c.api.Init(secretKey, backends)
	return c
}

func (c *Client) Configured() bool {
	return c.configured
}

// CreateCheckoutSession returns the hosted checkout URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		Locale: stripe.String("pt-BR"),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if len(req.Metadata) > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{Metadata: req.Metadata}
		for k, v := range req.Metadata {
			params.AddMetadata(k, v)
		}
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ParseEvent verifies the Stripe-Signature header against the raw body and
// decodes the event.
func (c *Client) ParseEvent(payload []byte, signature string) (stripe.Event, error) {
	if c.webhookSecret == "" {
		return stripe.Event{}, ErrWebhookSecret
	}
	if signature == "" {
		return stripe.Event{}, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}
