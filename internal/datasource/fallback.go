package datasource

import "github.com/seenimoa/researchdesk/pkg/models"

// fallbackComps are static comps rows served when the provider is
// unreachable. Figures are in billions / multiples.
var fallbackComps = map[string]models.CompsRow{
	"AAPL":  {Ticker: "AAPL", Name: "Apple Inc.", MarketCap: 2920, EV: 2890, Revenue: 394.3, EBITDA: 130.5, PERatio: 30.2, EVEbitda: 22.4, EVRevenue: 7.3},
	"MSFT":  {Ticker: "MSFT", Name: "Microsoft Corp.", MarketCap: 3090, EV: 3060, Revenue: 236.6, EBITDA: 123.7, PERatio: 35.8, EVEbitda: 24.7, EVRevenue: 12.9},
	"NVDA":  {Ticker: "NVDA", Name: "NVIDIA Corp.", MarketCap: 2160, EV: 2140, Revenue: 79.8, EBITDA: 50.1, PERatio: 68.5, EVEbitda: 49.1, EVRevenue: 26.8},
	"GOOGL": {Ticker: "GOOGL", Name: "Alphabet Inc.", MarketCap: 2110, EV: 1980, Revenue: 305.6, EBITDA: 105.7, PERatio: 22.7, EVEbitda: 17.2, EVRevenue: 6.5},
	"META":  {Ticker: "META", Name: "Meta Platforms", MarketCap: 1280, EV: 1240, Revenue: 136.0, EBITDA: 62.5, PERatio: 27.4, EVEbitda: 19.3, EVRevenue: 9.1},
	"JPM":   {Ticker: "JPM", Name: "JPMorgan Chase", MarketCap: 571, EV: 610, Revenue: 158.1, EBITDA: 66.5, PERatio: 11.8, EVEbitda: 8.4, EVRevenue: 3.9},
	"BAC":   {Ticker: "BAC", Name: "Bank of America", MarketCap: 289, EV: 310, Revenue: 93.8, EBITDA: 34.5, PERatio: 12.6, EVEbitda: 7.9, EVRevenue: 3.3},
	"GS":    {Ticker: "GS", Name: "Goldman Sachs", MarketCap: 162, EV: 174, Revenue: 50.3, EBITDA: 19.2, PERatio: 14.3, EVEbitda: 9.7, EVRevenue: 3.5},
	"LLY":   {Ticker: "LLY", Name: "Eli Lilly", MarketCap: 706, EV: 718, Revenue: 34.1, EBITDA: 13.4, PERatio: 89.4, EVEbitda: 58.7, EVRevenue: 21.1},
	"UNH":   {Ticker: "UNH", Name: "UnitedHealth Group", MarketCap: 481, EV: 522, Revenue: 371.6, EBITDA: 34.2, PERatio: 21.2, EVEbitda: 14.8, EVRevenue: 1.4},
	"JNJ":   {Ticker: "JNJ", Name: "Johnson & Johnson", MarketCap: 378, EV: 394, Revenue: 85.2, EBITDA: 33.0, PERatio: 15.9, EVEbitda: 12.3, EVRevenue: 4.6},
	"XOM":   {Ticker: "XOM", Name: "Exxon Mobil", MarketCap: 449, EV: 470, Revenue: 391.2, EBITDA: 83.3, PERatio: 13.7, EVEbitda: 7.6, EVRevenue: 1.2},
	"CVX":   {Ticker: "CVX", Name: "Chevron Corp.", MarketCap: 286, EV: 298, Revenue: 196.9, EBITDA: 39.0, PERatio: 14.1, EVEbitda: 8.1, EVRevenue: 1.5},
	"AMZN":  {Ticker: "AMZN", Name: "Amazon.com Inc.", MarketCap: 2020, EV: 2060, Revenue: 590.7, EBITDA: 102.8, PERatio: 43.6, EVEbitda: 21.8, EVRevenue: 3.5},
	"TSLA":  {Ticker: "TSLA", Name: "Tesla Inc.", MarketCap: 792, EV: 778, Revenue: 97.7, EBITDA: 14.3, PERatio: 64.2, EVEbitda: 38.5, EVRevenue: 7.9},
}

// FallbackCompsRow returns the static comps row for ticker, if any.
func FallbackCompsRow(ticker string) (models.CompsRow, bool) {
	r, ok := fallbackComps[ticker]
	return r, ok
}

// fallbackResult builds the offline answer for ticker. It returns
// ErrTickerNotFound when neither a universe entry nor a comps row is known.
func fallbackResult(ticker string) (*models.QuoteResult, error) {
	entry, inUniverse := UniverseEntryFor(ticker)
	row, hasComps := FallbackCompsRow(ticker)
	if !inUniverse && !hasComps {
		return nil, ErrTickerNotFound
	}

	res := &models.QuoteResult{Live: false}
	if inUniverse {
		s := shellStock(entry)
		res.Stock = &s
	}
	if hasComps {
		r := row
		res.CompsRow = &r
	}
	return res, nil
}
