package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/payments"
	"github.com/palpitesia/palpites-backend/internal/services"
	"github.com/stripe/stripe-go/v76"
)

// EventParser verifies and decodes a signed payment event.
type EventParser interface {
	ParseEvent(payload []byte, signature string) (stripe.Event, error)
}

type WebhookHandler struct {
	parser              EventParser
	subscriptionService *services.SubscriptionService
	inboundService      *services.InboundService
}

func NewWebhookHandler(parser EventParser, subscriptionService *services.SubscriptionService, inboundService *services.InboundService) *WebhookHandler {
	return &WebhookHandler{
		parser:              parser,
		subscriptionService: subscriptionService,
		inboundService:      inboundService,
	}
}

// HandleStripe verifies the signature before touching the database.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	event, err := h.parser.ParseEvent(payload, c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payments.ErrWebhookSecret) {
			slog.Error("stripe webhook rejected", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "webhook secret not configured"})
		}
		slog.Warn("stripe signature rejected", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid signature"})
	}

	outcome, err := h.subscriptionService.HandleEvent(c.UserContext(), event)
	if err != nil {
		slog.Error("webhook processing failed", "event_type", event.Type, "event_id", event.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to process webhook event"})
	}

	slog.Info("webhook processed", "event_type", event.Type, "event_id", event.ID, "outcome", outcome)
	return c.JSON(dto.WebhookAck{Received: true})
}

// HandleWhatsApp always answers 200 so the gateway never retries.
func (h *WebhookHandler) HandleWhatsApp(c *fiber.Ctx) error {
	status := h.inboundService.Handle(c.UserContext(), c.Body())
	return c.JSON(dto.InboundResponse{Status: status})
}

// ProbeWhatsApp answers the gateway's reachability check.
func (h *WebhookHandler) ProbeWhatsApp(c *fiber.Ctx) error {
	return c.JSON(dto.InboundResponse{Status: "GET_OK"})
}
