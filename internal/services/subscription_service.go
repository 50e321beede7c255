package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/models"
	"github.com/palpitesia/palpites-backend/internal/phone"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const providerStripe = "stripe"

// Webhook outcomes reported to metrics and logs.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeUnmatched = "unmatched"
	OutcomeFailed    = "failed"
)

type SubscriptionService struct {
	db      *gorm.DB
	metrics *metrics.Manager
}

func NewSubscriptionService(db *gorm.DB, m *metrics.Manager) *SubscriptionService {
	return &SubscriptionService{db: db, metrics: m}
}

// subscriberKeys are the identifiers an event can carry, in match order.
type subscriberKeys struct {
	customerID     string
	subscriptionID string
	phone          string
	email          string
}

// HandleEvent applies a verified Stripe event. The event id is recorded in the
// same transaction so a redelivery is acknowledged without side effects.
func (s *SubscriptionService) HandleEvent(ctx context.Context, event stripe.Event) (string, error) {
	outcome := OutcomeIgnored
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mark := models.WebhookEvent{
			Provider:    providerStripe,
			EventID:     event.ID,
			EventType:   string(event.Type),
			ProcessedAt: time.Now().UTC(),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mark)
		if res.Error != nil {
			return fmt.Errorf("record webhook event: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			outcome = OutcomeDuplicate
			return nil
		}

		var err error
		outcome, err = s.apply(tx, event)
		return err
	})
	if err != nil {
		outcome = OutcomeFailed
	}
	s.metrics.WebhookEvent(string(event.Type), outcome)
	return outcome, err
}

func (s *SubscriptionService) apply(tx *gorm.DB, event stripe.Event) (string, error) {
	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(tx, event)
	case "invoice.payment_succeeded":
		return s.handleInvoice(tx, event, models.SubscriberActive)
	case "invoice.payment_failed":
		return s.handleInvoice(tx, event, models.SubscriberPastDue)
	case "payment_intent.succeeded":
		return s.handlePaymentIntent(tx, event, models.SubscriberActive)
	case "payment_intent.payment_failed":
		return s.handlePaymentIntent(tx, event, models.SubscriberFailed)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(tx, event)
	default:
		return OutcomeIgnored, nil
	}
}

func (s *SubscriptionService) handleCheckoutCompleted(tx *gorm.DB, event stripe.Event) (string, error) {
	var sess stripe.CheckoutSession
	if err := decodeObject(event, &sess); err != nil {
		return "", fmt.Errorf("decode checkout session: %w", err)
	}

	md := sess.Metadata
	var details stripe.CheckoutSessionCustomerDetails
	if sess.CustomerDetails != nil {
		details = *sess.CustomerDetails
	}

	rawPhone := firstNonEmpty(details.Phone, md["telefone"], md["whatsapp_number"])
	email := strings.ToLower(firstNonEmpty(details.Email, sess.CustomerEmail, md["email_cliente"]))
	plan := md["plan"]

	fields := map[string]interface{}{"status": models.SubscriberActive}
	setField(fields, "stripe_customer_id", customerID(sess.Customer))
	setField(fields, "stripe_subscription_id", subscriptionID(sess.Subscription))
	setField(fields, "email", email)
	setField(fields, "name", firstNonEmpty(details.Name, md["nome_cliente"]))
	setField(fields, "cpf", md["cpf"])
	if plan != "" {
		fields["plan"] = plan
		fields["sport"] = models.SportForPlan(plan)
	}
	if len(sess.PaymentMethodTypes) > 0 {
		fields["payment_method"] = sess.PaymentMethodTypes[0]
	}

	canonical, ok := phone.Normalize(rawPhone)
	if !ok {
		keys := subscriberKeys{customerID: customerID(sess.Customer), email: email}
		sub, err := findSubscriber(tx, keys)
		if err != nil {
			return "", err
		}
		if sub == nil {
			slog.Warn("checkout completed without phone and no matching subscriber",
				"event_type", string(event.Type), "session", sess.ID)
			return OutcomeUnmatched, nil
		}
		if err := tx.Model(sub).Updates(fields).Error; err != nil {
			return "", fmt.Errorf("update subscriber: %w", err)
		}
		return OutcomeProcessed, nil
	}

	whatsapp := phone.Digits(firstNonEmpty(md["whatsapp_number"], rawPhone))

	var sub models.Subscriber
	err := tx.Where("phone = ?", canonical).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.Subscriber{
			Phone:                canonical,
			WhatsAppNumber:       whatsapp,
			Email:                email,
			Name:                 firstNonEmpty(details.Name, md["nome_cliente"]),
			CPF:                  md["cpf"],
			Plan:                 plan,
			Sport:                models.SportForPlan(plan),
			Status:               models.SubscriberActive,
			StripeCustomerID:     customerID(sess.Customer),
			StripeSubscriptionID: subscriptionID(sess.Subscription),
		}
		if len(sess.PaymentMethodTypes) > 0 {
			sub.PaymentMethod = sess.PaymentMethodTypes[0]
		}
		if err := tx.Create(&sub).Error; err != nil {
			return "", fmt.Errorf("create subscriber: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("find subscriber: %w", err)
	default:
		fields["whatsapp_number"] = whatsapp
		if err := tx.Model(&sub).Updates(fields).Error; err != nil {
			return "", fmt.Errorf("update subscriber: %w", err)
		}
	}

	slog.Info("subscriber activated", "phone", phone.Mask(canonical), "plan", plan)
	return OutcomeProcessed, nil
}

func (s *SubscriptionService) handleInvoice(tx *gorm.DB, event stripe.Event, status string) (string, error) {
	var inv stripe.Invoice
	if err := decodeObject(event, &inv); err != nil {
		return "", fmt.Errorf("decode invoice: %w", err)
	}
	keys := subscriberKeys{
		customerID:     customerID(inv.Customer),
		subscriptionID: subscriptionID(inv.Subscription),
		phone:          inv.CustomerPhone,
		email:          inv.CustomerEmail,
	}
	return s.setStatus(tx, event, keys, map[string]interface{}{"status": status})
}

func (s *SubscriptionService) handlePaymentIntent(tx *gorm.DB, event stripe.Event, status string) (string, error) {
	var pi stripe.PaymentIntent
	if err := decodeObject(event, &pi); err != nil {
		return "", fmt.Errorf("decode payment intent: %w", err)
	}
	keys := subscriberKeys{
		customerID: customerID(pi.Customer),
		phone:      firstNonEmpty(pi.Metadata["telefone"], pi.Metadata["whatsapp_number"]),
		email:      firstNonEmpty(pi.ReceiptEmail, pi.Metadata["email_cliente"]),
	}
	fields := map[string]interface{}{"status": status}
	if status == models.SubscriberActive && len(pi.PaymentMethodTypes) > 0 {
		fields["payment_method"] = pi.PaymentMethodTypes[0]
	}
	return s.setStatus(tx, event, keys, fields)
}

func (s *SubscriptionService) handleSubscriptionDeleted(tx *gorm.DB, event stripe.Event) (string, error) {
	var sub stripe.Subscription
	if err := decodeObject(event, &sub); err != nil {
		return "", fmt.Errorf("decode subscription: %w", err)
	}
	keys := subscriberKeys{
		customerID:     customerID(sub.Customer),
		subscriptionID: sub.ID,
		phone:          firstNonEmpty(sub.Metadata["telefone"], sub.Metadata["whatsapp_number"]),
		email:          sub.Metadata["email_cliente"],
	}
	return s.setStatus(tx, event, keys, map[string]interface{}{"status": models.SubscriberCanceled})
}

func (s *SubscriptionService) setStatus(tx *gorm.DB, event stripe.Event, keys subscriberKeys, fields map[string]interface{}) (string, error) {
	sub, err := findSubscriber(tx, keys)
	if err != nil {
		return "", err
	}
	if sub == nil {
		slog.Warn("no subscriber matches stripe event", "event_type", string(event.Type), "event_id", event.ID)
		return OutcomeUnmatched, nil
	}
	if err := tx.Model(sub).Updates(fields).Error; err != nil {
		return "", fmt.Errorf("update subscriber: %w", err)
	}
	slog.Info("subscriber status changed", "event_type", string(event.Type), "phone", phone.Mask(sub.Phone), "status", fields["status"])
	return OutcomeProcessed, nil
}

// findSubscriber tries customer id, subscription id, canonical phone, then
// email. A nil subscriber with nil error means no match.
func findSubscriber(tx *gorm.DB, keys subscriberKeys) (*models.Subscriber, error) {
	lookups := []struct {
		column string
		value  string
	}{
		{"stripe_customer_id", keys.customerID},
		{"stripe_subscription_id", keys.subscriptionID},
		{"phone", canonicalOrEmpty(keys.phone)},
		{"email", strings.ToLower(strings.TrimSpace(keys.email))},
	}

	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		var sub models.Subscriber
		err := tx.Where(l.column+" = ?", l.value).First(&sub).Error
		if err == nil {
			return &sub, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find subscriber by %s: %w", l.column, err)
		}
	}
	return nil, nil
}

func decodeObject(event stripe.Event, v interface{}) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return errors.New("event has no data object")
	}
	return json.Unmarshal(event.Data.Raw, v)
}

func canonicalOrEmpty(raw string) string {
	if n, ok := phone.Normalize(raw); ok {
		return n
	}
	return ""
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func subscriptionID(s *stripe.Subscription) string {
	if s == nil {
		return ""
	}
	return s.ID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func setField(fields map[string]interface{}, column, value string) {
	if value != "" {
		fields[column] = value
	}
}
