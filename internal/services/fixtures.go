package services

import (
	"context"
	"log/slog"

	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/picks"
	"github.com/palpitesia/palpites-backend/internal/sportsdata"
)

func matchOf(f sportsdata.Fixture) picks.Match {
	return picks.Match{
		ID:     f.Fixture.ID,
		League: f.League.Name,
		Home:   f.Teams.Home.Name,
		Away:   f.Teams.Away.Name,
	}
}

func summaryOf(f sportsdata.Fixture) dto.MatchSummary {
	return dto.MatchSummary{
		ID:     f.Fixture.ID,
		League: f.League.Name,
		Home:   f.Teams.Home.Name,
		Away:   f.Teams.Away.Name,
		Date:   f.Fixture.Date,
	}
}

// engineFixtures fetches statistics and odds for each fixture. A fixture whose
// lookups fail is logged and left out.
func engineFixtures(ctx context.Context, sports SportsProvider, fixtures []sportsdata.Fixture) ([]picks.Fixture, error) {
	out := make([]picks.Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		stats, err := sports.Statistics(ctx, f.Fixture.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("statistics fetch failed, skipping fixture", "fixture", f.Fixture.ID, "error", err)
			continue
		}
		odds, err := sports.Odds(ctx, f.Fixture.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("odds fetch failed, skipping fixture", "fixture", f.Fixture.ID, "error", err)
			continue
		}
		out = append(out, picks.Fixture{
			Match:         matchOf(f),
			HasStatistics: len(stats) > 0,
			Markets:       sportsdata.MarketNames(odds),
		})
	}
	return out, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
