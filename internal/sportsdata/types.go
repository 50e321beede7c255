package sportsdata

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type Team struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type League struct {
	ID      int    `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
	Season  int    `json:"season,omitempty"`
}

type Status struct {
	Short string `json:"short,omitempty"`
	Long  string `json:"long,omitempty"`
}

type FixtureInfo struct {
	ID     int64  `json:"id"`
	Date   string `json:"date,omitempty"`
	Status Status `json:"status"`
}

type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Score struct {
	Fulltime Goals `json:"fulltime"`
}

// Fixture is the subset of an API-Football fixture this service reads.
type Fixture struct {
	Fixture FixtureInfo `json:"fixture"`
	League  League      `json:"league"`
	Teams   Teams       `json:"teams"`
	Goals   Goals       `json:"goals"`
	Score   Score       `json:"score"`
}

// FinalScore prefers live goals and falls back to the fulltime score.
func (f Fixture) FinalScore() (home, away int) {
	pick := func(g, ft *int) int {
		switch {
		case g != nil:
			return *g
		case ft != nil:
			return *ft
		default:
			return 0
		}
	}
	return pick(f.Goals.Home, f.Score.Fulltime.Home), pick(f.Goals.Away, f.Score.Fulltime.Away)
}

type Statistic struct {
	Type  string     `json:"type"`
	Value FlexString `json:"value"`
}

type TeamStatistics struct {
	Team       Team        `json:"team"`
	Statistics []Statistic `json:"statistics"`
}

type OddValue struct {
	Value FlexString `json:"value"`
	Odd   FlexString `json:"odd"`
}

type Bet struct {
	ID     int        `json:"id,omitempty"`
	Name   string     `json:"name"`
	Values []OddValue `json:"values"`
}

type Bookmaker struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Bets []Bet  `json:"bets"`
}

type Odds struct {
	Fixture    FixtureInfo `json:"fixture"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}

// MarketNames lists the distinct bet names quoted across every bookmaker.
func MarketNames(odds []Odds) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range odds {
		for _, b := range o.Bookmakers {
			for _, bet := range b.Bets {
				if _, ok := seen[bet.Name]; ok || bet.Name == "" {
					continue
				}
				seen[bet.Name] = struct{}{}
				out = append(out, bet.Name)
			}
		}
	}
	return out
}

// FlexString accepts JSON strings, numbers and null.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(b)
	return nil
}

func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(f), 64)
	return v, err == nil
}

type envelope[T any] struct {
	Response T               `json:"response"`
	Errors   json.RawMessage `json:"errors"`
}

// hasErrors reports a non-empty errors field. API-Football answers 200 with
// errors as either [] or {}.
func hasErrors(raw json.RawMessage) bool {
	s := string(bytes.TrimSpace(raw))
	return s != "" && s != "[]" && s != "{}" && s != "null"
}
