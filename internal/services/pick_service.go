package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/models"
	"github.com/palpitesia/palpites-backend/internal/picks"
	"gorm.io/gorm"
)

type PickService struct {
	db      *gorm.DB
	sports  SportsProvider
	metrics *metrics.Manager
}

func NewPickService(db *gorm.DB, sports SportsProvider, m *metrics.Manager) *PickService {
	return &PickService{db: db, sports: sports, metrics: m}
}

// Generate evaluates today's fixtures, persists every surviving single and
// combo in one insert and returns the WhatsApp message.
func (s *PickService) Generate(ctx context.Context, now time.Time) (*dto.PicksResult, error) {
	defer s.metrics.ObserveJob("picks", time.Now())

	date := now.UTC().Format("2006-01-02")
	fixtures, err := s.sports.FixturesByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures: %w", err)
	}

	enriched, err := engineFixtures(ctx, s.sports, fixtures)
	if err != nil {
		return nil, err
	}

	result := picks.Build(enriched)
	all := result.All()

	if len(all) > 0 {
		rows := make([]models.Pick, 0, len(all))
		for _, p := range all {
			rows = append(rows, toPickModel(p))
		}
		if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return nil, fmt.Errorf("save picks: %w", err)
		}
	}

	s.metrics.PicksGenerated(string(picks.KindSingle), len(result.Singles))
	s.metrics.PicksGenerated(string(picks.KindStrategic), len(result.Strategic))
	s.metrics.PicksGenerated(string(picks.KindBold), len(result.Bold))
	slog.Info("picks generated", "job", "picks", "fixtures", len(fixtures), "singles", len(result.Singles),
		"strategic", len(result.Strategic), "bold", len(result.Bold))

	return &dto.PicksResult{
		Success: true,
		Total:   len(all),
		Combos:  dto.ComboCounts{Strategic: len(result.Strategic), Bold: len(result.Bold)},
		Message: picks.FormatMessage(result),
	}, nil
}

func toPickModel(p picks.Pick) models.Pick {
	return models.Pick{
		Kind:        string(p.Kind),
		Category:    string(p.Category),
		Description: p.Description,
		Analysis:    p.Analysis,
		Odd:         p.Odd,
		Confidence:  p.Confidence,
		MatchID:     p.ID,
		League:      p.League,
		Home:        p.Home,
		Away:        p.Away,
		Result:      models.PickResultPending,
	}
}
