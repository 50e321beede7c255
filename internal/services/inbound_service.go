package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/models"
	"github.com/palpitesia/palpites-backend/internal/phone"
	"github.com/palpitesia/palpites-backend/internal/whatsapp"
	"gorm.io/gorm"
)

// Inbound handling statuses. Every one of them is answered with HTTP 200.
const (
	InboundIgnored     = "ignored"
	InboundInvalidJSON = "invalid_json"
	InboundNotFound    = "not_found"
	InboundOK          = "ok"
	InboundResent      = "reenviado"
	InboundDBError     = "db_error"
)

// prefilterDigits is the suffix length used to narrow the subscriber scan
// before exact variant matching.
const prefilterDigits = 8

type InboundService struct {
	db      *gorm.DB
	sender  Sender
	metrics *metrics.Manager
}

func NewInboundService(db *gorm.DB, sender Sender, m *metrics.Manager) *InboundService {
	return &InboundService{db: db, sender: sender, metrics: m}
}

// Handle processes a gateway webhook body. A subscriber parked with a pending
// message gets it resent now that the customer window is open again.
func (s *InboundService) Handle(ctx context.Context, body []byte) string {
	status := s.handle(ctx, body)
	s.metrics.InboundHandled(status)
	return status
}

func (s *InboundService) handle(ctx context.Context, body []byte) string {
	msg, ok, err := whatsapp.ParseInbound(body)
	if err != nil {
		slog.Warn("inbound payload rejected", "error", err)
		return InboundInvalidJSON
	}
	if !ok {
		return InboundIgnored
	}

	sub, err := s.findByNumber(ctx, msg.From)
	if err != nil {
		slog.Error("inbound subscriber lookup failed", "phone", phone.Mask(msg.From), "error", err)
		return InboundDBError
	}
	if sub == nil {
		slog.Info("inbound from unknown number", "phone", phone.Mask(msg.From))
		return InboundNotFound
	}

	if !sub.WaitingOptIn || sub.PendingMessage == nil || *sub.PendingMessage == "" {
		return InboundOK
	}

	to, ok := phone.Normalize(msg.From)
	if !ok {
		to = sub.Phone
	}
	pending := *sub.PendingMessage

	entry := models.SendLog{
		SubscriberID: &sub.ID,
		Phone:        to,
		Message:      pending,
		Kind:         models.SendKindResend,
		Status:       models.SendStatusSent,
	}
	sendErr := s.sender.Send(ctx, to, pending)
	entry.SentAt = time.Now().UTC()

	if sendErr != nil {
		entry.Status = models.SendStatusFailed
		entry.Error = sendErr.Error()
		slog.Warn("pending message resend failed, keeping it", "phone", phone.Mask(to), "error", sendErr)
	} else {
		err := s.db.WithContext(ctx).Model(sub).Updates(map[string]interface{}{
			"waiting_optin":   false,
			"pending_message": nil,
		}).Error
		if err != nil {
			slog.Error("clear pending flags failed", "phone", phone.Mask(to), "error", err)
		}
		slog.Info("pending message resent", "phone", phone.Mask(to))
	}
	s.metrics.MessageSent(models.SendKindResend, entry.Status)

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.Error("send log write failed", "job", models.SendKindResend, "phone", phone.Mask(to), "error", err)
	}
	return InboundResent
}

// findByNumber narrows candidates by the trailing digits and then requires a
// suffix-variant match on the canonical phone or the WhatsApp number.
func (s *InboundService) findByNumber(ctx context.Context, from string) (*models.Subscriber, error) {
	tail := phone.Tail(from, prefilterDigits)
	if tail == "" {
		return nil, nil
	}

	var candidates []models.Subscriber
	like := "%" + tail
	err := s.db.WithContext(ctx).
		Where("phone LIKE ? OR whatsapp_number LIKE ?", like, like).
		Order("created_at").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		c := &candidates[i]
		if phone.Match(from, c.Phone) || (c.WhatsAppNumber != "" && phone.Match(from, c.WhatsAppNumber)) {
			return c, nil
		}
	}
	return nil, nil
}
