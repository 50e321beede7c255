package services

import (
	"context"
	"time"

	"github.com/palpitesia/palpites-backend/internal/llm"
	"github.com/palpitesia/palpites-backend/internal/payments"
	"github.com/palpitesia/palpites-backend/internal/sportsdata"
)

// Sender delivers one WhatsApp text message.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Pacer blocks until the next send is allowed.
type Pacer interface {
	Wait(ctx context.Context) error
}

// SportsProvider is the subset of the API-Football client the jobs use.
type SportsProvider interface {
	FixturesByDate(ctx context.Context, date string) ([]sportsdata.Fixture, error)
	FixturesByLeagues(ctx context.Context, leagues []int, date string, now time.Time) ([]sportsdata.Fixture, error)
	Statistics(ctx context.Context, fixtureID int64) ([]sportsdata.TeamStatistics, error)
	Odds(ctx context.Context, fixtureID int64) ([]sportsdata.Odds, error)
	FixtureByID(ctx context.Context, fixtureID int64) (*sportsdata.Fixture, error)
}

// Completer drafts text with a chat model.
type Completer interface {
	Available() bool
	Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error)
}

// CheckoutProvider creates hosted payment pages.
type CheckoutProvider interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (string, error)
}
