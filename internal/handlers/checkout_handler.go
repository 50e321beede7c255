package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/services"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	publicBaseURL   string
}

func NewCheckoutHandler(checkoutService *services.CheckoutService, publicBaseURL string) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, publicBaseURL: publicBaseURL}
}

func (h *CheckoutHandler) Create(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	url, err := h.checkoutService.CreateSession(c.UserContext(), req, h.origin(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPlan):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Plano inválido ou não configurado"})
		case errors.Is(err, services.ErrPaymentsNotConfigured):
			slog.Error("checkout unavailable", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "payments not configured"})
		}
		slog.Error("checkout session failed", "plan", req.Plan, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to create checkout session"})
	}

	return c.JSON(dto.CheckoutResponse{URL: url})
}

// origin is where Stripe sends the customer back: the Origin header, else the
// configured public URL, else this request's base URL.
func (h *CheckoutHandler) origin(c *fiber.Ctx) string {
	if o := c.Get(fiber.HeaderOrigin); o != "" {
		return o
	}
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	return c.BaseURL()
}
