// Package sportsdata is a client for the API-Football v3 REST API.
package sportsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	ErrNotConfigured   = errors.New("api-football key not configured")
	ErrFixtureNotFound = errors.New("fixture not found")
)

const seasonTTL = 24 * time.Hour

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   Cache
	ttl     time.Duration
}

type Option func(*Client)

// WithCache stores successful responses for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.ttl = ttl
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool { return c.apiKey != "" }

// FixturesByDate lists every fixture on date (YYYY-MM-DD).
func (c *Client) FixturesByDate(ctx context.Context, date string) ([]Fixture, error) {
	return fetch[[]Fixture](ctx, c, "/fixtures", url.Values{"date": {date}}, c.ttl)
}

// FixturesByLeagues lists fixtures on date for each league in the detected
// season. A failing league is logged and skipped; the call fails only when
// every league failed.
func (c *Client) FixturesByLeagues(ctx context.Context, leagues []int, date string, now time.Time) ([]Fixture, error) {
	season := c.CurrentSeason(ctx, now)
	slog.Info("fetching fixtures", "season", season, "date", date, "leagues", len(leagues))

	var (
		out     []Fixture
		lastErr error
		failed  int
	)
	for _, id := range leagues {
		q := url.Values{
			"league": {strconv.Itoa(id)},
			"season": {strconv.Itoa(season)},
			"date":   {date},
		}
		fixtures, err := fetch[[]Fixture](ctx, c, "/fixtures", q, c.ttl)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("league fixtures fetch failed", "league", id, "error", err)
			failed++
			lastErr = err
			continue
		}
		out = append(out, fixtures...)
	}
	if len(leagues) > 0 && failed == len(leagues) {
		return nil, fmt.Errorf("all league fetches failed: %w", lastErr)
	}
	return out, nil
}

func (c *Client) Statistics(ctx context.Context, fixtureID int64) ([]TeamStatistics, error) {
	q := url.Values{"fixture": {strconv.FormatInt(fixtureID, 10)}}
	return fetch[[]TeamStatistics](ctx, c, "/fixtures/statistics", q, c.ttl)
}

func (c *Client) Odds(ctx context.Context, fixtureID int64) ([]Odds, error) {
	q := url.Values{"fixture": {strconv.FormatInt(fixtureID, 10)}}
	return fetch[[]Odds](ctx, c, "/odds", q, c.ttl)
}

func (c *Client) FixtureByID(ctx context.Context, fixtureID int64) (*Fixture, error) {
	q := url.Values{"id": {strconv.FormatInt(fixtureID, 10)}}
	fixtures, err := fetch[[]Fixture](ctx, c, "/fixtures", q, c.ttl)
	if err != nil {
		return nil, err
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrFixtureNotFound, fixtureID)
	}
	return &fixtures[0], nil
}

// CurrentSeason guesses the European season for now (August onwards is the
// current year) and steps back a year when the provider has no leagues for
// the guess or cannot be reached.
func (c *Client) CurrentSeason(ctx context.Context, now time.Time) int {
	guess := now.Year()
	if now.Month() < time.August {
		guess--
	}

	leagues, err := fetch[[]json.RawMessage](ctx, c, "/leagues", url.Values{"season": {strconv.Itoa(guess)}}, seasonTTL)
	if err != nil {
		slog.Warn("season probe failed, using previous season", "season", guess, "error", err)
		return guess - 1
	}
	if len(leagues) == 0 {
		return guess - 1
	}
	return guess
}

func fetch[T any](ctx context.Context, c *Client, path string, q url.Values, ttl time.Duration) (T, error) {
	var zero T
	if c.apiKey == "" {
		return zero, ErrNotConfigured
	}

	cacheKey := path + "?" + q.Encode()
	if c.cache != nil && ttl > 0 {
		body, ok, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			slog.Warn("sports cache read failed", "key", cacheKey, "error", err)
		} else if ok {
			var env envelope[T]
			if err := json.Unmarshal(body, &env); err == nil {
				return env.Response, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+cacheKey, nil)
	if err != nil {
		return zero, err
	}
	req.Header.Set("x-apisports-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, err
	}

	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("api-football %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("api-football %s: decode: %w", path, err)
	}
	if hasErrors(env.Errors) {
		return zero, fmt.Errorf("api-football %s: %s", path, string(env.Errors))
	}

	if c.cache != nil && ttl > 0 {
		if err := c.cache.Set(ctx, cacheKey, body, ttl); err != nil {
			slog.Warn("sports cache write failed", "key", cacheKey, "error", err)
		}
	}
	return env.Response, nil
}
