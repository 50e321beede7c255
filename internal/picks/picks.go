// Package picks filters candidate bets against the markets a bookmaker offers
// and pairs accepted picks into combos.
package picks

import (
	"math"
	"sort"
)

const (
	MinOdd        = 1.5
	MinConfidence = 70
)

// Combo odd windows. Both are closed, so a combined odd of exactly 4.0 lands
// in both lists.
const (
	StrategicMin = 2.0
	StrategicMax = 4.0
	BoldMin      = 4.0
	BoldMax      = 10.0
)

type Category string

const (
	CategoryGoals   Category = "gols"
	CategoryCards   Category = "cartoes"
	CategoryCorners Category = "escanteios"
	CategoryShots   Category = "finalizacoes"
	CategoryResult  Category = "resultado"
	CategoryMixed   Category = "misto"
)

type Kind string

const (
	KindSingle    Kind = "single"
	KindStrategic Kind = "strategic"
	KindBold      Kind = "bold"
)

type Match struct {
	ID     int64
	League string
	Home   string
	Away   string
}

// Fixture is one match with the bet names its bookmakers quote.
type Fixture struct {
	Match
	HasStatistics bool
	Markets       []string
}

type Candidate struct {
	Category    Category
	Description string
	Analysis    string
	Odd         float64
	Confidence  int
}

type Pick struct {
	Match
	Kind        Kind
	Category    Category
	Description string
	Analysis    string
	Odd         float64
	Confidence  int
}

type Result struct {
	Singles   []Pick
	Strategic []Pick
	Bold      []Pick
}

// All returns singles, then strategic combos, then bold combos.
func (r Result) All() []Pick {
	out := make([]Pick, 0, len(r.Singles)+len(r.Strategic)+len(r.Bold))
	out = append(out, r.Singles...)
	out = append(out, r.Strategic...)
	out = append(out, r.Bold...)
	return out
}

// Templates are the candidate picks evaluated for every fixture.
func Templates() []Candidate {
	return []Candidate{
		{
			Category:    CategoryGoals,
			Description: "+1.5 gols",
			Analysis:    "Ambas as equipes têm média superior a 2.8 gols nos últimos 5 jogos.",
			Odd:         1.55,
			Confidence:  82,
		},
		{
			Category:    CategoryCorners,
			Description: "+6 escanteios no jogo",
			Analysis:    "Média combinada de 11.3 escanteios nas últimas rodadas, cenário ideal para esse mercado.",
			Odd:         1.5,
			Confidence:  80,
		},
		{
			Category:    CategoryCards,
			Description: "+3 cartões no jogo",
			Analysis:    "Jogo com perfil de alta intensidade: ambos estão entre os 5 times mais faltosos da liga.",
			Odd:         1.85,
			Confidence:  75,
		},
		{
			Category:    CategoryMixed,
			Description: "Vitória do mandante + +2.5 gols",
			Analysis:    "Combinação de valor: mandante com aproveitamento ofensivo alto e visitante com média de 1.9 gols sofridos fora.",
			Odd:         3.2,
			Confidence:  72,
		},
	}
}

// Accept reports whether a candidate clears both thresholds and its market is
// quoted among markets.
func Accept(c Candidate, markets []string) bool {
	if c.Odd < MinOdd || c.Confidence < MinConfidence {
		return false
	}
	return MarketAvailable(c.Description, markets)
}

// Singles evaluates every template against every fixture. Fixtures without
// statistics yield nothing.
func Singles(fixtures []Fixture, templates []Candidate) []Pick {
	var out []Pick
	for _, fx := range fixtures {
		if !fx.HasStatistics {
			continue
		}
		for _, c := range templates {
			if !Accept(c, fx.Markets) {
				continue
			}
			out = append(out, Pick{
				Match:       fx.Match,
				Kind:        KindSingle,
				Category:    c.Category,
				Description: c.Description,
				Analysis:    c.Analysis,
				Odd:         c.Odd,
				Confidence:  c.Confidence,
			})
		}
	}
	return out
}

// Combine sorts singles by odd and pairs adjacent entries.
func Combine(singles []Pick) (strategic, bold []Pick) {
	sorted := make([]Pick, 0, len(singles))
	for _, p := range singles {
		if p.Odd >= MinOdd {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Odd < sorted[j].Odd })

	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i], sorted[i+1]
		odd := Round2(a.Odd * b.Odd)
		conf := int(math.Round(float64(a.Confidence+b.Confidence) / 2))

		if odd >= StrategicMin && odd <= StrategicMax {
			strategic = append(strategic, combo(a, b, KindStrategic, odd, conf,
				"🎯 Bingo Estratégico: combinação com base em valor e consistência ("+a.Home+" x "+a.Away+")."))
		}
		if odd >= BoldMin && odd <= BoldMax {
			bold = append(bold, combo(a, b, KindBold, odd, conf,
				"🔥 Bingo Corajoso: alto potencial de retorno (stake reduzida recomendada)."))
		}
	}
	return strategic, bold
}

func combo(a, b Pick, kind Kind, odd float64, conf int, analysis string) Pick {
	return Pick{
		Match:       a.Match,
		Kind:        kind,
		Category:    a.Category,
		Description: a.Description + " + " + b.Description,
		Analysis:    analysis,
		Odd:         odd,
		Confidence:  conf,
	}
}

// Build runs the default templates over fixtures and derives combos.
func Build(fixtures []Fixture) Result {
	singles := Singles(fixtures, Templates())
	strategic, bold := Combine(singles)
	return Result{Singles: singles, Strategic: strategic, Bold: bold}
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
