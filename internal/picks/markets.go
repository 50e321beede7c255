package picks

import "strings"

var allMarkets = []string{
	"Corners",
	"Cards",
	"Bookings",
	"Goals Over/Under",
	"Total Goals",
	"Goals",
	"Match Winner",
	"1X2",
	"Double Chance",
	"Shots",
	"Shots on Target",
}

// marketRules map description keywords to bookmaker bet names, first match wins.
var marketRules = []struct {
	keywords []string
	markets  []string
}{
	{[]string{"escanteio"}, []string{"Corners"}},
	{[]string{"cartão", "cartões", "cartao", "cartoes"}, []string{"Cards", "Bookings"}},
	{[]string{"gol"}, []string{"Goals Over/Under", "Total Goals", "Goals"}},
	{[]string{"vitória", "vitoria", "vence", "dupla chance"}, []string{"Match Winner", "1X2", "Double Chance"}},
	{[]string{"finaliza"}, []string{"Shots", "Shots on Target"}},
}

// MarketHints returns the bet names that can settle a pick description.
func MarketHints(description string) []string {
	d := strings.ToLower(description)
	for _, r := range marketRules {
		for _, kw := range r.keywords {
			if strings.Contains(d, kw) {
				return r.markets
			}
		}
	}
	return allMarkets
}

// MarketAvailable reports whether any hinted market is among markets,
// compared case-insensitively.
func MarketAvailable(description string, markets []string) bool {
	if len(markets) == 0 {
		return false
	}
	quoted := make(map[string]struct{}, len(markets))
	for _, m := range markets {
		quoted[strings.ToLower(m)] = struct{}{}
	}
	for _, h := range MarketHints(description) {
		if _, ok := quoted[strings.ToLower(h)]; ok {
			return true
		}
	}
	return false
}
