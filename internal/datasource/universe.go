package datasource

import (
	"sort"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// Sector labels follow the provider's assetProfile naming so that live and
// static records agree.
const (
	SectorTechnology    = "Technology"
	SectorCommunication = "Communication Services"
	SectorConsumerCyc   = "Consumer Cyclical"
	SectorConsumerDef   = "Consumer Defensive"
	SectorFinancial     = "Financial Services"
	SectorHealthcare    = "Healthcare"
	SectorEnergy        = "Energy"
	SectorIndustrials   = "Industrials"
	SectorMaterials     = "Basic Materials"
	SectorUtilities     = "Utilities"
	SectorRealEstate    = "Real Estate"
)

// universe is the fixed list of large US listings the batch quote covers.
var universe = []models.UniverseEntry{
	// Technology
	{Ticker: "AAPL", Name: "Apple Inc.", Sector: SectorTechnology},
	{Ticker: "MSFT", Name: "Microsoft Corp.", Sector: SectorTechnology},
	{Ticker: "NVDA", Name: "NVIDIA Corp.", Sector: SectorTechnology},
	{Ticker: "AVGO", Name: "Broadcom Inc.", Sector: SectorTechnology},
	{Ticker: "ORCL", Name: "Oracle Corp.", Sector: SectorTechnology},
	{Ticker: "CRM", Name: "Salesforce Inc.", Sector: SectorTechnology},
	{Ticker: "ADBE", Name: "Adobe Inc.", Sector: SectorTechnology},
	{Ticker: "AMD", Name: "Advanced Micro Devices", Sector: SectorTechnology},
	{Ticker: "INTC", Name: "Intel Corp.", Sector: SectorTechnology},
	{Ticker: "CSCO", Name: "Cisco Systems", Sector: SectorTechnology},
	{Ticker: "QCOM", Name: "Qualcomm Inc.", Sector: SectorTechnology},
	{Ticker: "TXN", Name: "Texas Instruments", Sector: SectorTechnology},
	{Ticker: "IBM", Name: "IBM Corp.", Sector: SectorTechnology},
	{Ticker: "NOW", Name: "ServiceNow Inc.", Sector: SectorTechnology},
	{Ticker: "PLTR", Name: "Palantir Technologies", Sector: SectorTechnology},

	// Communication Services
	{Ticker: "GOOGL", Name: "Alphabet Inc.", Sector: SectorCommunication},
	{Ticker: "META", Name: "Meta Platforms", Sector: SectorCommunication},
	{Ticker: "NFLX", Name: "Netflix Inc.", Sector: SectorCommunication},
	{Ticker: "DIS", Name: "Walt Disney Co.", Sector: SectorCommunication},
	{Ticker: "CMCSA", Name: "Comcast Corp.", Sector: SectorCommunication},
	{Ticker: "T", Name: "AT&T Inc.", Sector: SectorCommunication},
	{Ticker: "VZ", Name: "Verizon Communications", Sector: SectorCommunication},
	{Ticker: "TMUS", Name: "T-Mobile US", Sector: SectorCommunication},

	// Consumer Cyclical
	{Ticker: "AMZN", Name: "Amazon.com Inc.", Sector: SectorConsumerCyc},
	{Ticker: "TSLA", Name: "Tesla Inc.", Sector: SectorConsumerCyc},
	{Ticker: "HD", Name: "Home Depot", Sector: SectorConsumerCyc},
	{Ticker: "MCD", Name: "McDonald's Corp.", Sector: SectorConsumerCyc},
	{Ticker: "NKE", Name: "Nike Inc.", Sector: SectorConsumerCyc},
	{Ticker: "LOW", Name: "Lowe's Companies", Sector: SectorConsumerCyc},
	{Ticker: "SBUX", Name: "Starbucks Corp.", Sector: SectorConsumerCyc},
	{Ticker: "BKNG", Name: "Booking Holdings", Sector: SectorConsumerCyc},
	{Ticker: "GM", Name: "General Motors", Sector: SectorConsumerCyc},
	{Ticker: "F", Name: "Ford Motor Co.", Sector: SectorConsumerCyc},

	// Consumer Defensive
	{Ticker: "WMT", Name: "Walmart Inc.", Sector: SectorConsumerDef},
	{Ticker: "PG", Name: "Procter & Gamble", Sector: SectorConsumerDef},
	{Ticker: "KO", Name: "Coca-Cola Co.", Sector: SectorConsumerDef},
	{Ticker: "PEP", Name: "PepsiCo Inc.", Sector: SectorConsumerDef},
	{Ticker: "COST", Name: "Costco Wholesale", Sector: SectorConsumerDef},
	{Ticker: "PM", Name: "Philip Morris International", Sector: SectorConsumerDef},
	{Ticker: "MDLZ", Name: "Mondelez International", Sector: SectorConsumerDef},
	{Ticker: "CL", Name: "Colgate-Palmolive", Sector: SectorConsumerDef},

	// Financial Services
	{Ticker: "JPM", Name: "JPMorgan Chase", Sector: SectorFinancial},
	{Ticker: "BAC", Name: "Bank of America", Sector: SectorFinancial},
	{Ticker: "WFC", Name: "Wells Fargo", Sector: SectorFinancial},
	{Ticker: "GS", Name: "Goldman Sachs", Sector: SectorFinancial},
	{Ticker: "MS", Name: "Morgan Stanley", Sector: SectorFinancial},
	{Ticker: "C", Name: "Citigroup Inc.", Sector: SectorFinancial},
	{Ticker: "BRK-B", Name: "Berkshire Hathaway", Sector: SectorFinancial},
	{Ticker: "V", Name: "Visa Inc.", Sector: SectorFinancial},
	{Ticker: "MA", Name: "Mastercard Inc.", Sector: SectorFinancial},
	{Ticker: "AXP", Name: "American Express", Sector: SectorFinancial},
	{Ticker: "BLK", Name: "BlackRock Inc.", Sector: SectorFinancial},
	{Ticker: "SCHW", Name: "Charles Schwab", Sector: SectorFinancial},

	// Healthcare
	{Ticker: "LLY", Name: "Eli Lilly", Sector: SectorHealthcare},
	{Ticker: "UNH", Name: "UnitedHealth Group", Sector: SectorHealthcare},
	{Ticker: "JNJ", Name: "Johnson & Johnson", Sector: SectorHealthcare},
	{Ticker: "ABBV", Name: "AbbVie Inc.", Sector: SectorHealthcare},
	{Ticker: "MRK", Name: "Merck & Co.", Sector: SectorHealthcare},
	{Ticker: "PFE", Name: "Pfizer Inc.", Sector: SectorHealthcare},
	{Ticker: "TMO", Name: "Thermo Fisher Scientific", Sector: SectorHealthcare},
	{Ticker: "ABT", Name: "Abbott Laboratories", Sector: SectorHealthcare},
	{Ticker: "AMGN", Name: "Amgen Inc.", Sector: SectorHealthcare},
	{Ticker: "ISRG", Name: "Intuitive Surgical", Sector: SectorHealthcare},

	// Energy
	{Ticker: "XOM", Name: "Exxon Mobil", Sector: SectorEnergy},
	{Ticker: "CVX", Name: "Chevron Corp.", Sector: SectorEnergy},
	{Ticker: "COP", Name: "ConocoPhillips", Sector: SectorEnergy},
	{Ticker: "SLB", Name: "Schlumberger", Sector: SectorEnergy},
	{Ticker: "EOG", Name: "EOG Resources", Sector: SectorEnergy},
	{Ticker: "OXY", Name: "Occidental Petroleum", Sector: SectorEnergy},
	{Ticker: "PSX", Name: "Phillips 66", Sector: SectorEnergy},

	// Industrials
	{Ticker: "GE", Name: "GE Aerospace", Sector: SectorIndustrials},
	{Ticker: "CAT", Name: "Caterpillar Inc.", Sector: SectorIndustrials},
	{Ticker: "BA", Name: "Boeing Co.", Sector: SectorIndustrials},
	{Ticker: "HON", Name: "Honeywell International", Sector: SectorIndustrials},
	{Ticker: "UNP", Name: "Union Pacific", Sector: SectorIndustrials},
	{Ticker: "UPS", Name: "United Parcel Service", Sector: SectorIndustrials},
	{Ticker: "RTX", Name: "RTX Corp.", Sector: SectorIndustrials},
	{Ticker: "DE", Name: "Deere & Co.", Sector: SectorIndustrials},
	{Ticker: "LMT", Name: "Lockheed Martin", Sector: SectorIndustrials},

	// Basic Materials
	{Ticker: "LIN", Name: "Linde plc", Sector: SectorMaterials},
	{Ticker: "SHW", Name: "Sherwin-Williams", Sector: SectorMaterials},
	{Ticker: "FCX", Name: "Freeport-McMoRan", Sector: SectorMaterials},
	{Ticker: "NEM", Name: "Newmont Corp.", Sector: SectorMaterials},

	// Utilities
	{Ticker: "NEE", Name: "NextEra Energy", Sector: SectorUtilities},
	{Ticker: "DUK", Name: "Duke Energy", Sector: SectorUtilities},
	{Ticker: "SO", Name: "Southern Co.", Sector: SectorUtilities},

	// Real Estate
	{Ticker: "PLD", Name: "Prologis Inc.", Sector: SectorRealEstate},
	{Ticker: "AMT", Name: "American Tower", Sector: SectorRealEstate},
	{Ticker: "EQIX", Name: "Equinix Inc.", Sector: SectorRealEstate},
}

var universeIndex = func() map[string]models.UniverseEntry {
	m := make(map[string]models.UniverseEntry, len(universe))
	for _, e := range universe {
		m[e.Ticker] = e
	}
	return m
}()

// Universe returns a copy of the fixed universe in declaration order.
func Universe() []models.UniverseEntry {
	out := make([]models.UniverseEntry, len(universe))
	copy(out, universe)
	return out
}

// UniverseEntryFor returns the static entry for ticker, if any.
func UniverseEntryFor(ticker string) (models.UniverseEntry, bool) {
	e, ok := universeIndex[ticker]
	return e, ok
}

// UniverseTickers returns the universe symbols in declaration order.
func UniverseTickers() []string {
	out := make([]string, len(universe))
	for i, e := range universe {
		out[i] = e.Ticker
	}
	return out
}

// UniverseSectors returns the distinct universe sectors, sorted.
func UniverseSectors() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range universe {
		if !seen[e.Sector] {
			seen[e.Sector] = true
			out = append(out, e.Sector)
		}
	}
	sort.Strings(out)
	return out
}

// ShellStocks returns zero-filled records for every universe member.
func ShellStocks() []models.Stock {
	out := make([]models.Stock, len(universe))
	for i, e := range universe {
		out[i] = shellStock(e)
	}
	return out
}
