package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/models"
	"gorm.io/gorm"
)

// Deliverer sends one body to every active subscriber.
type Deliverer interface {
	Deliver(ctx context.Context, kind, body string) (dto.DeliveryStats, error)
}

type ReportService struct {
	db        *gorm.DB
	deliverer Deliverer
	metrics   *metrics.Manager
}

func NewReportService(db *gorm.DB, deliverer Deliverer, m *metrics.Manager) *ReportService {
	return &ReportService{db: db, deliverer: deliverer, metrics: m}
}

// Daily reports on picks created yesterday (UTC).
func (s *ReportService) Daily(ctx context.Context, now time.Time) (*dto.ReportResult, error) {
	defer s.metrics.ObserveJob(models.SendKindDailyReport, time.Now())

	end := startOfDay(now)
	start := end.AddDate(0, 0, -1)
	stats, err := s.tally(ctx, start, end)
	if err != nil {
		return nil, err
	}

	lines := []string{
		"📈 Relatório Diário - Palpites.IA",
		"Data: " + start.Format("02/01/2006"),
		"",
		"✅ Greens: " + strconv.Itoa(stats.Wins),
		"❌ Reds: " + strconv.Itoa(stats.Losses),
		"⏳ Pendentes: " + strconv.Itoa(stats.Pending),
		"",
		"Taxa de acerto: " + formatRate(stats.HitRate) + "%",
		"",
		"Use sempre gestão de banca e avalie os mercados com melhor valor para você.",
		"A IA Palpites.IA analisa estatísticas oficiais continuamente.",
	}
	return s.send(ctx, models.SendKindDailyReport, strings.Join(lines, "\n"), stats)
}

// Monthly reports on picks created in the current UTC month.
func (s *ReportService) Monthly(ctx context.Context, now time.Time) (*dto.ReportResult, error) {
	defer s.metrics.ObserveJob(models.SendKindMonthlyReport, time.Now())

	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	stats, err := s.tally(ctx, start, end)
	if err != nil {
		return nil, err
	}

	lines := []string{
		"🗓️ Relatório Mensal - Palpites.IA",
		"Período: " + start.Format("02/01/2006") + " até " + now.Format("02/01/2006"),
		"",
		"✅ Greens: " + strconv.Itoa(stats.Wins),
		"❌ Reds: " + strconv.Itoa(stats.Losses),
		"Total de palpites: " + strconv.Itoa(stats.Total),
		"",
		"Taxa de acerto: " + formatRate(stats.HitRate) + "%",
		"",
		"Resumo: foco no longo prazo e na gestão de banca. Ajustes de mercados e odds são feitos continuamente.",
	}
	return s.send(ctx, models.SendKindMonthlyReport, strings.Join(lines, "\n"), stats)
}

func (s *ReportService) send(ctx context.Context, kind, body string, stats dto.PickStats) (*dto.ReportResult, error) {
	delivery, err := s.deliverer.Deliver(ctx, kind, body)
	if err != nil {
		return nil, err
	}
	return &dto.ReportResult{
		Success:       true,
		Kind:          kind,
		Picks:         stats.Total,
		Wins:          stats.Wins,
		Losses:        stats.Losses,
		Pending:       stats.Pending,
		HitRate:       stats.HitRate,
		DeliveryStats: delivery,
		Preview:       preview(body, previewLength),
	}, nil
}

func (s *ReportService) tally(ctx context.Context, start, end time.Time) (dto.PickStats, error) {
	var results []string
	err := s.db.WithContext(ctx).Model(&models.Pick{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Pluck("result", &results).Error
	if err != nil {
		return dto.PickStats{}, fmt.Errorf("load picks: %w", err)
	}
	return PickStatsOf(results), nil
}

// PickStatsOf counts results. Hit rate is wins over all picks, in percent with
// one decimal.
func PickStatsOf(results []string) dto.PickStats {
	stats := dto.PickStats{Total: len(results)}
	for _, r := range results {
		switch r {
		case models.PickResultWin:
			stats.Wins++
		case models.PickResultLoss:
			stats.Losses++
		default:
			stats.Pending++
		}
	}
	if stats.Total > 0 {
		stats.HitRate = math.Round(float64(stats.Wins)/float64(stats.Total)*1000) / 10
	}
	return stats
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', 1, 64)
}
