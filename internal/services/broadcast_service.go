package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/models"
	"github.com/palpitesia/palpites-backend/internal/phone"
	"github.com/palpitesia/palpites-backend/internal/sportsdata"
	"github.com/palpitesia/palpites-backend/internal/whatsapp"
	"gorm.io/gorm"
)

const ReasonNoContent = "no content for today"

type BroadcastOptions struct {
	SettlementReport bool
	WABANumber       string
}

type BroadcastService struct {
	db      *gorm.DB
	sports  SportsProvider
	sender  Sender
	pacer   Pacer
	opts    BroadcastOptions
	metrics *metrics.Manager
}

func NewBroadcastService(db *gorm.DB, sports SportsProvider, sender Sender, pacer Pacer, opts BroadcastOptions, m *metrics.Manager) *BroadcastService {
	return &BroadcastService{db: db, sports: sports, sender: sender, pacer: pacer, opts: opts, metrics: m}
}

// Send delivers the latest generated content, optionally followed by a
// settlement report on yesterday's fixtures, to every active subscriber.
func (s *BroadcastService) Send(ctx context.Context, now time.Time) (*dto.BroadcastResult, error) {
	defer s.metrics.ObserveJob("broadcast", time.Now())

	var content models.DailyPick
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Warn("broadcast skipped", "job", "broadcast", "reason", ReasonNoContent)
		return &dto.BroadcastResult{Success: false, Reason: ReasonNoContent}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load daily pick: %w", err)
	}

	var report string
	if s.opts.SettlementReport {
		report = s.settlementReport(ctx, now)
	}
	body := s.compose(now, content.Text, report)

	stats, err := s.Deliver(ctx, models.SendKindPicks, body)
	if err != nil {
		return nil, err
	}

	createdAt := content.CreatedAt
	return &dto.BroadcastResult{
		Success:          true,
		ContentCreatedAt: &createdAt,
		DeliveryStats:    stats,
		Preview:          preview(body, previewLength),
	}, nil
}

// Deliver sends body once to each active subscriber, paced, recording a
// SendLog per attempt. Failures are counted and never retried.
func (s *BroadcastService) Deliver(ctx context.Context, kind, body string) (dto.DeliveryStats, error) {
	var subs []models.Subscriber
	if err := s.db.WithContext(ctx).Where("status = ?", models.SubscriberActive).Order("created_at").Find(&subs).Error; err != nil {
		return dto.DeliveryStats{}, fmt.Errorf("load subscribers: %w", err)
	}

	stats := dto.DeliveryStats{Total: len(subs)}
	s.metrics.ActiveSubscribers(len(subs))

	for i := range subs {
		sub := &subs[i]
		to, ok := phone.Normalize(firstNonEmpty(sub.WhatsAppNumber, sub.Phone))
		if !ok {
			stats.Skipped++
			continue
		}

		if err := s.pacer.Wait(ctx); err != nil {
			slog.Warn("delivery interrupted", "job", kind, "sent", stats.Sent, "failed", stats.Failed, "error", err)
			return stats, err
		}

		sendErr := s.sender.Send(ctx, to, body)
		entry := models.SendLog{
			SubscriberID: &sub.ID,
			Phone:        to,
			Message:      body,
			Kind:         kind,
			Status:       models.SendStatusSent,
			SentAt:       time.Now().UTC(),
		}
		if sendErr != nil {
			stats.Failed++
			entry.Status = models.SendStatusFailed
			entry.Error = sendErr.Error()
			slog.Warn("whatsapp send failed", "job", kind, "phone", phone.Mask(to), "error", sendErr)
			if whatsapp.IsReengagementRequired(sendErr) {
				s.markPending(ctx, sub, body)
			}
		} else {
			stats.Sent++
		}
		s.metrics.MessageSent(kind, entry.Status)

		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			slog.Error("send log write failed", "job", kind, "phone", phone.Mask(to), "error", err)
		}
	}

	slog.Info("delivery finished", "job", kind, "total", stats.Total, "sent", stats.Sent,
		"failed", stats.Failed, "skipped", stats.Skipped)
	return stats, nil
}

// markPending parks body until the subscriber writes to us.
func (s *BroadcastService) markPending(ctx context.Context, sub *models.Subscriber, body string) {
	err := s.db.WithContext(ctx).Model(sub).Updates(map[string]interface{}{
		"waiting_optin":   true,
		"pending_message": body,
	}).Error
	if err != nil {
		slog.Error("mark pending message failed", "phone", phone.Mask(sub.Phone), "error", err)
	}
}

func (s *BroadcastService) compose(now time.Time, text, report string) string {
	var b strings.Builder
	b.WriteString("💎 PALPITES.IA - PREMIUM (" + now.UTC().Format("2006-01-02") + ")\n\n")
	b.WriteString(strings.TrimSpace(text))
	if report != "" {
		b.WriteString("\n\n----------------------------------------\n")
		b.WriteString(strings.TrimSpace(report))
	}
	if s.opts.WABANumber != "" {
		b.WriteString("\n\nEnviado automaticamente pelo sistema PALPITES.IA (" + s.opts.WABANumber + ").")
	}
	return b.String()
}

// settlementReport summarizes the final scores of yesterday's covered
// fixtures. Lookup failures leave the fixture out.
func (s *BroadcastService) settlementReport(ctx context.Context, now time.Time) string {
	end := startOfDay(now)
	start := end.AddDate(0, 0, -1)

	var rows []models.DailyPick
	if err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at").
		Find(&rows).Error; err != nil {
		slog.Warn("load yesterday's content failed", "job", "broadcast", "error", err)
	}

	var ids []int64
	seen := make(map[int64]bool)
	for _, r := range rows {
		var matches []dto.MatchSummary
		if err := json.Unmarshal(r.Matches, &matches); err != nil {
			continue
		}
		for _, m := range matches {
			if m.ID != 0 && !seen[m.ID] {
				seen[m.ID] = true
				ids = append(ids, m.ID)
			}
		}
	}

	var fixtures []sportsdata.Fixture
	for _, id := range ids {
		f, err := s.sports.FixtureByID(ctx, id)
		if err != nil {
			slog.Warn("fixture refresh failed", "job", "broadcast", "fixture", id, "error", err)
			continue
		}
		fixtures = append(fixtures, *f)
	}
	return FormatSettlementReport(fixtures)
}

// FormatSettlementReport renders the goals summary for finished fixtures.
func FormatSettlementReport(fixtures []sportsdata.Fixture) string {
	if len(fixtures) == 0 {
		return "📊 RELATÓRIO PROFISSIONAL (ontem)\n" +
			"- Nenhum jogo dos palpites de ontem foi encontrado na API.\n" +
			"- Assim que houver histórico suficiente, começaremos a publicar estatísticas detalhadas.\n"
	}

	totalGoals := 0
	lines := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		home, away := f.FinalScore()
		totalGoals += home + away

		league := orDefault(f.League.Name, "Liga")
		if f.League.Country != "" {
			league += " - " + f.League.Country
		}
		lines = append(lines, fmt.Sprintf("- %s %d x %d %s (%s)",
			orDefault(f.Teams.Home.Name, "Time Casa"), home, away,
			orDefault(f.Teams.Away.Name, "Time Fora"), league))
	}

	avg := float64(totalGoals) / float64(len(fixtures))
	return "📊 RELATÓRIO PROFISSIONAL (ontem)\n" +
		"- Jogos acompanhados: " + strconv.Itoa(len(fixtures)) + "\n" +
		"- Média de gols por jogo: " + strconv.FormatFloat(avg, 'f', 2, 64) + "\n\n" +
		"Resultados dos jogos analisados:\n" +
		strings.Join(lines, "\n")
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
