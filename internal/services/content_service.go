package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/llm"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/models"
	"github.com/palpitesia/palpites-backend/internal/picks"
	"github.com/palpitesia/palpites-backend/internal/sportsdata"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNoFixtures = errors.New("no fixtures today")
	ErrNoPicks    = errors.New("no picks for today's fixtures")
)

const (
	SourceLLM    = "llm"
	SourceEngine = "engine"
)

const (
	maxCandidates     = 30
	fallbackSelection = 10
	previewLength     = 500
)

const selectPrompt = `Você é um analista de futebol. Recebe uma lista de jogos com estatísticas e deve selecionar SOMENTE os melhores jogos para palpites. Retorne EXCLUSIVAMENTE JSON no formato { "jogos": [...] }, mantendo o campo "id" de cada jogo.`

const narrativePrompt = `Você escreve análises premium estilo PALPITES.IA. Estrutura: contexto, análise, palpite seguro (odd 1.7-2.3), palpite estendido (odd 2.5-3.5), bingo corajoso (odd 5-10).`

type ContentService struct {
	db      *gorm.DB
	sports  SportsProvider
	llm     Completer
	leagues []int
	metrics *metrics.Manager
}

func NewContentService(db *gorm.DB, sports SportsProvider, completer Completer, leagues []int, m *metrics.Manager) *ContentService {
	return &ContentService{db: db, sports: sports, llm: completer, leagues: leagues, metrics: m}
}

// candidate is the fixture view sent to the model.
type candidate struct {
	ID         int64                       `json:"id"`
	Date       string                      `json:"data,omitempty"`
	League     string                      `json:"liga"`
	Country    string                      `json:"pais,omitempty"`
	Home       string                      `json:"mandante"`
	Away       string                      `json:"visitante"`
	Statistics []sportsdata.TeamStatistics `json:"estatisticas,omitempty"`
	fixture    sportsdata.Fixture
}

// Generate drafts today's narrative from priority-league fixtures and stores
// it as the content the broadcast job sends next.
func (s *ContentService) Generate(ctx context.Context, now time.Time) (*dto.ContentResult, error) {
	defer s.metrics.ObserveJob("content", time.Now())

	date := now.UTC().Format("2006-01-02")
	fixtures, err := s.sports.FixturesByLeagues(ctx, s.leagues, date, now)
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil, ErrNoFixtures
	}

	candidates := make([]candidate, 0, len(fixtures))
	for _, f := range fixtures {
		c := candidate{
			ID:      f.Fixture.ID,
			Date:    f.Fixture.Date,
			League:  f.League.Name,
			Country: f.League.Country,
			Home:    f.Teams.Home.Name,
			Away:    f.Teams.Away.Name,
			fixture: f,
		}
		stats, err := s.sports.Statistics(ctx, f.Fixture.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("statistics fetch failed", "job", "content", "fixture", f.Fixture.ID, "error", err)
		}
		c.Statistics = stats
		candidates = append(candidates, c)
	}
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	text, matches, source := "", []dto.MatchSummary(nil), SourceLLM
	if s.llm != nil && s.llm.Available() {
		text, matches, err = s.draft(ctx, candidates)
		if err != nil {
			slog.Warn("llm draft failed, falling back to picks engine", "job", "content", "error", err)
		}
	}
	if text == "" {
		source = SourceEngine
		text, matches, err = s.engineDraft(ctx, fixtures)
		if err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(matches)
	if err != nil {
		return nil, err
	}
	row := models.DailyPick{Text: text, Matches: datatypes.JSON(raw), Source: source}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("save daily pick: %w", err)
	}

	slog.Info("content generated", "job", "content", "source", source, "fixtures", len(fixtures), "matches", len(matches))
	return &dto.ContentResult{
		Success: true,
		ID:      row.ID,
		Source:  source,
		Matches: len(matches),
		Preview: preview(text, previewLength),
	}, nil
}

// draft asks the model to pick the best games, then to write about them.
func (s *ContentService) draft(ctx context.Context, candidates []candidate) (string, []dto.MatchSummary, error) {
	input, err := json.Marshal(candidates)
	if err != nil {
		return "", nil, err
	}

	raw, err := s.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: selectPrompt},
		{Role: "user", Content: string(input)},
	}, llm.Options{JSON: true, Temperature: 0.3})
	if err != nil {
		return "", nil, fmt.Errorf("select games: %w", err)
	}

	selected := selectCandidates(raw, candidates)
	if len(selected) == 0 {
		slog.Warn("model selection unusable, using first candidates", "job", "content")
		selected = candidates
		if len(selected) > fallbackSelection {
			selected = selected[:fallbackSelection]
		}
	}

	input, err = json.Marshal(selected)
	if err != nil {
		return "", nil, err
	}
	text, err := s.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: narrativePrompt},
		{Role: "user", Content: string(input)},
	}, llm.Options{Temperature: 0.7})
	if err != nil {
		return "", nil, fmt.Errorf("write narrative: %w", err)
	}

	matches := make([]dto.MatchSummary, 0, len(selected))
	for _, c := range selected {
		matches = append(matches, summaryOf(c.fixture))
	}
	return text, matches, nil
}

// selectCandidates maps the ids in {"jogos": [...]} back to candidates. Items
// may be bare ids or objects carrying "id" or "fixture.id".
func selectCandidates(raw string, candidates []candidate) []candidate {
	var parsed struct {
		Jogos []json.RawMessage `json:"jogos"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &parsed); err != nil {
		return nil
	}

	byID := make(map[int64]candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	seen := make(map[int64]bool)
	var out []candidate
	for _, item := range parsed.Jogos {
		id := itemID(item)
		c, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	return out
}

func itemID(item json.RawMessage) int64 {
	var id int64
	if err := json.Unmarshal(item, &id); err == nil {
		return id
	}
	var obj struct {
		ID      int64 `json:"id"`
		Fixture struct {
			ID int64 `json:"id"`
		} `json:"fixture"`
	}
	if err := json.Unmarshal(item, &obj); err != nil {
		return 0
	}
	if obj.ID != 0 {
		return obj.ID
	}
	return obj.Fixture.ID
}

// engineDraft renders the picks engine message over fixtures. Only fixtures
// that produced a pick are listed as covered.
func (s *ContentService) engineDraft(ctx context.Context, fixtures []sportsdata.Fixture) (string, []dto.MatchSummary, error) {
	enriched, err := engineFixtures(ctx, s.sports, fixtures)
	if err != nil {
		return "", nil, err
	}
	result := picks.Build(enriched)
	if len(result.All()) == 0 {
		return "", nil, ErrNoPicks
	}

	used := make(map[int64]bool)
	for _, p := range result.Singles {
		used[p.ID] = true
	}
	var matches []dto.MatchSummary
	for _, f := range fixtures {
		if used[f.Fixture.ID] {
			matches = append(matches, summaryOf(f))
			used[f.Fixture.ID] = false
		}
	}
	return picks.FormatMessage(result), matches, nil
}
