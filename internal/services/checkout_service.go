package services

import (
	"context"
	"errors"
	"strings"

	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/payments"
	"github.com/palpitesia/palpites-backend/internal/phone"
)

var (
	ErrUnknownPlan           = errors.New("unknown or unconfigured plan")
	ErrPaymentsNotConfigured = errors.New("payments not configured")
)

type CheckoutService struct {
	provider CheckoutProvider
	prices   map[string]string
	metrics  *metrics.Manager
}

func NewCheckoutService(provider CheckoutProvider, cfg *config.Config, m *metrics.Manager) *CheckoutService {
	return &CheckoutService{provider: provider, prices: cfg.PriceIDs(), metrics: m}
}

// CreateSession starts a subscription checkout and returns the hosted URL.
// origin is the scheme and host the customer returns to.
func (s *CheckoutService) CreateSession(ctx context.Context, req dto.CheckoutRequest, origin string) (string, error) {
	plan := strings.ToLower(strings.TrimSpace(req.Plan))
	priceID := s.prices[plan]
	if priceID == "" {
		return "", ErrUnknownPlan
	}
	if !s.provider.Configured() {
		return "", ErrPaymentsNotConfigured
	}

	origin = strings.TrimRight(origin, "/")
	md := map[string]string{"plan": plan}
	setIf(md, "nome_cliente", strings.TrimSpace(req.NomeCliente))
	setIf(md, "email_cliente", strings.ToLower(strings.TrimSpace(req.EmailCliente)))
	tel := firstNonEmpty(req.Telefone, req.WhatsAppNumber)
	setIf(md, "telefone", tel)
	setIf(md, "whatsapp_number", phone.Digits(tel))
	setIf(md, "cpf", phone.Digits(req.CPF))

	url, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		PriceID:       priceID,
		SuccessURL:    origin + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     origin + "/cancel",
		CustomerEmail: md["email_cliente"],
		Metadata:      md,
	})
	if err != nil {
		return "", err
	}
	s.metrics.CheckoutCreated(plan)
	return url, nil
}

func setIf(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}
