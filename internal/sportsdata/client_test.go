package sportsdata_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/palpitesia/palpites-backend/internal/sportsdata"
	. "github.com/smartystreets/goconvey/convey"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{items: map[string][]byte{}} }

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[key]
	return b, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

const fixturesBody = `{"errors":[],"results":1,"response":[{
  "fixture":{"id":101,"date":"2026-10-16T19:00:00+00:00","status":{"short":"FT"}},
  "league":{"id":39,"name":"Premier League","country":"England"},
  "teams":{"home":{"id":1,"name":"Arsenal"},"away":{"id":2,"name":"Chelsea"}},
  "goals":{"home":2,"away":null},
  "score":{"fulltime":{"home":2,"away":1}}
}]}`

func TestClientFetch(t *testing.T) {
	Convey("Given an API-Football server", t, func() {
		var hits atomic.Int32
		var gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			gotKey = r.Header.Get("x-apisports-key")
			switch r.URL.Path {
			case "/fixtures":
				if r.URL.Query().Get("id") == "404" {
					_, _ = w.Write([]byte(`{"errors":[],"response":[]}`))
					return
				}
				_, _ = w.Write([]byte(fixturesBody))
			case "/odds":
				_, _ = w.Write([]byte(`{"errors":{},"response":[{"fixture":{"id":101},"bookmakers":[
				  {"name":"Bet365","bets":[{"name":"Goals Over/Under","values":[{"value":"Over 1.5","odd":"1.30"}]},{"name":"Corners","values":[{"value":9.5,"odd":1.9}]}]},
				  {"name":"Betano","bets":[{"name":"Goals Over/Under","values":[]}]}
				]}]}`))
			case "/fixtures/statistics":
				_, _ = w.Write([]byte(`{"errors":{"requests":"You have reached the request limit for the day"},"response":[]}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		cache := newMemoryCache()
		client := sportsdata.New(srv.URL, "key-123", sportsdata.WithCache(cache, time.Minute))
		ctx := context.Background()

		Convey("Fixtures are decoded and the API key header is sent", func() {
			fixtures, err := client.FixturesByDate(ctx, "2026-10-16")
			So(err, ShouldBeNil)
			So(gotKey, ShouldEqual, "key-123")
			So(len(fixtures), ShouldEqual, 1)
			So(fixtures[0].Fixture.ID, ShouldEqual, int64(101))
			So(fixtures[0].Teams.Home.Name, ShouldEqual, "Arsenal")

			home, away := fixtures[0].FinalScore()
			So(home, ShouldEqual, 2)
			So(away, ShouldEqual, 1)
		})

		Convey("A second identical call is served from cache", func() {
			_, err := client.FixturesByDate(ctx, "2026-10-16")
			So(err, ShouldBeNil)
			_, err = client.FixturesByDate(ctx, "2026-10-16")
			So(err, ShouldBeNil)
			So(hits.Load(), ShouldEqual, int32(1))
		})

		Convey("Odds values may be strings or numbers", func() {
			odds, err := client.Odds(ctx, 101)
			So(err, ShouldBeNil)
			So(sportsdata.MarketNames(odds), ShouldResemble, []string{"Goals Over/Under", "Corners"})

			v, ok := odds[0].Bookmakers[0].Bets[1].Values[0].Odd.Float()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 1.9)
		})

		Convey("Provider errors in a 200 response are surfaced", func() {
			_, err := client.Statistics(ctx, 101)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "request limit")
		})

		Convey("A missing fixture is reported", func() {
			_, err := client.FixtureByID(ctx, 404)
			So(errors.Is(err, sportsdata.ErrFixtureNotFound), ShouldBeTrue)
		})

		Convey("Without an API key nothing is requested", func() {
			_, err := sportsdata.New(srv.URL, "").FixturesByDate(ctx, "2026-10-16")
			So(err, ShouldEqual, sportsdata.ErrNotConfigured)
			So(hits.Load(), ShouldEqual, int32(0))
		})
	})
}

func TestCurrentSeason(t *testing.T) {
	Convey("Given a provider that knows seasons up to 2025", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("season") <= "2025" {
				_, _ = w.Write([]byte(`{"errors":[],"response":[{"league":{"id":39}}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"errors":[],"response":[]}`))
		}))
		defer srv.Close()
		client := sportsdata.New(srv.URL, "k")
		ctx := context.Background()

		Convey("From August the current year is tried first", func() {
			So(client.CurrentSeason(ctx, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 2025)
		})

		Convey("Before August the previous year is used", func() {
			So(client.CurrentSeason(ctx, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 2025)
		})

		Convey("An unknown season falls back one year", func() {
			So(client.CurrentSeason(ctx, time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)), ShouldEqual, 2025)
		})
	})
}

func TestFixturesByLeagues(t *testing.T) {
	Convey("Given one healthy league and one failing league", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/leagues":
				_, _ = w.Write([]byte(`{"errors":[],"response":[{}]}`))
			case r.URL.Query().Get("league") == "39":
				_, _ = w.Write([]byte(fixturesBody))
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		}))
		defer srv.Close()
		client := sportsdata.New(srv.URL, "k")
		now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

		Convey("Fixtures from the healthy league are returned", func() {
			fixtures, err := client.FixturesByLeagues(context.Background(), []int{39, 71}, "2026-10-16", now)
			So(err, ShouldBeNil)
			So(len(fixtures), ShouldEqual, 1)
		})

		Convey("The call fails when every league fails", func() {
			_, err := client.FixturesByLeagues(context.Background(), []int{71, 72}, "2026-10-16", now)
			So(err, ShouldNotBeNil)
		})
	})
}
