package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/palpitesia/palpites-backend/internal/llm"
	"github.com/palpitesia/palpites-backend/internal/payments"
	"github.com/palpitesia/palpites-backend/internal/sportsdata"
	"github.com/palpitesia/palpites-backend/internal/whatsapp"
)

type sentMessage struct {
	To   string
	Body string
}

// fakeSender fails for numbers listed in failures.
type fakeSender struct {
	mu       sync.Mutex
	sent     []sentMessage
	failures map[string]error
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return nil
}

type noPacer struct{ waits int }

func (p *noPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func reengagementErr() error {
	return &whatsapp.SendError{StatusCode: 400, Code: whatsapp.CodeReengagement, Message: "Re-engagement message"}
}

type fakeSports struct {
	fixtures   []sportsdata.Fixture
	stats      map[int64][]sportsdata.TeamStatistics
	odds       map[int64][]sportsdata.Odds
	byID       map[int64]sportsdata.Fixture
	fixtureErr error
	statsErr   map[int64]error
	leagues    []int
}

func (f *fakeSports) FixturesByDate(_ context.Context, _ string) ([]sportsdata.Fixture, error) {
	return f.fixtures, f.fixtureErr
}

func (f *fakeSports) FixturesByLeagues(_ context.Context, leagues []int, _ string, _ time.Time) ([]sportsdata.Fixture, error) {
	f.leagues = leagues
	return f.fixtures, f.fixtureErr
}

func (f *fakeSports) Statistics(_ context.Context, id int64) ([]sportsdata.TeamStatistics, error) {
	if err := f.statsErr[id]; err != nil {
		return nil, err
	}
	return f.stats[id], nil
}

func (f *fakeSports) Odds(_ context.Context, id int64) ([]sportsdata.Odds, error) {
	return f.odds[id], nil
}

func (f *fakeSports) FixtureByID(_ context.Context, id int64) (*sportsdata.Fixture, error) {
	fx, ok := f.byID[id]
	if !ok {
		return nil, sportsdata.ErrFixtureNotFound
	}
	return &fx, nil
}

func fixture(id int64, league, home, away string) sportsdata.Fixture {
	return sportsdata.Fixture{
		Fixture: sportsdata.FixtureInfo{ID: id},
		League:  sportsdata.League{Name: league, Country: "Brazil"},
		Teams: sportsdata.Teams{
			Home: sportsdata.Team{Name: home},
			Away: sportsdata.Team{Name: away},
		},
	}
}

func someStats() []sportsdata.TeamStatistics {
	return []sportsdata.TeamStatistics{{
		Team:       sportsdata.Team{Name: "Home"},
		Statistics: []sportsdata.Statistic{{Type: "Corner Kicks", Value: "6"}},
	}}
}

func oddsWith(markets ...string) []sportsdata.Odds {
	bets := make([]sportsdata.Bet, 0, len(markets))
	for _, m := range markets {
		bets = append(bets, sportsdata.Bet{Name: m})
	}
	return []sportsdata.Odds{{Bookmakers: []sportsdata.Bookmaker{{Name: "Bet365", Bets: bets}}}}
}

type fakeLLM struct {
	available bool
	replies   []string
	err       error
	calls     [][]llm.Message
}

func (f *fakeLLM) Available() bool { return f.available }

func (f *fakeLLM) Complete(_ context.Context, msgs []llm.Message, _ llm.Options) (string, error) {
	f.calls = append(f.calls, msgs)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no reply queued")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

type fakeCheckout struct {
	configured bool
	last       payments.CheckoutRequest
	url        string
	err        error
}

func (f *fakeCheckout) Configured() bool { return f.configured }

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (string, error) {
	f.last = req
	return f.url, f.err
}
