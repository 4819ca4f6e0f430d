package datasource

import (
	"math"
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// Scale is the unit convention an upstream numeric field arrives in.
type Scale int

const (
	// ScaleAsIs marks a field already in the target unit (prices, multiples,
	// percentages the provider has already multiplied by 100).
	ScaleAsIs Scale = iota
	// ScaleBillions marks a raw currency amount reported in units.
	ScaleBillions
	// ScaleFraction marks a ratio reported as a fraction (0.0082 = 0.82 %).
	ScaleFraction
)

// Field names an upstream numeric field, qualified by endpoint and module.
type Field string

// Batch quote (v7) fields.
const (
	QuotePrice         Field = "quote.regularMarketPrice"
	QuoteChangePercent Field = "quote.regularMarketChangePercent"
	QuoteMarketCap     Field = "quote.marketCap"
	QuoteTrailingPE    Field = "quote.trailingPE"
	QuotePriceToBook   Field = "quote.priceToBook"
)

// Single lookup (v10 quoteSummary) fields.
const (
	SummaryPrice         Field = "price.regularMarketPrice"
	SummaryChangePercent Field = "price.regularMarketChangePercent"
	SummaryMarketCap     Field = "price.marketCap"
	SummaryEV            Field = "defaultKeyStatistics.enterpriseValue"
	SummaryPriceToBook   Field = "defaultKeyStatistics.priceToBook"
	SummaryEVToEbitda    Field = "defaultKeyStatistics.enterpriseToEbitda"
	SummaryEVToRevenue   Field = "defaultKeyStatistics.enterpriseToRevenue"
	SummaryTrailingPE    Field = "summaryDetail.trailingPE"
	SummaryRevenue       Field = "financialData.totalRevenue"
	SummaryEbitda        Field = "financialData.ebitda"
	SummaryRevenueGrowth Field = "financialData.revenueGrowth"
	SummaryEbitdaMargins Field = "financialData.ebitdaMargins"
)

// fieldScales records the unit each upstream field uses. The two endpoints
// disagree on percent change: v7 quote sends a percentage, quoteSummary a
// fraction.
var fieldScales = map[Field]Scale{
	QuotePrice:         ScaleAsIs,
	QuoteChangePercent: ScaleAsIs,
	QuoteMarketCap:     ScaleBillions,
	QuoteTrailingPE:    ScaleAsIs,
	QuotePriceToBook:   ScaleAsIs,

	SummaryPrice:         ScaleAsIs,
	SummaryChangePercent: ScaleFraction,
	SummaryMarketCap:     ScaleBillions,
	SummaryEV:            ScaleBillions,
	SummaryPriceToBook:   ScaleAsIs,
	SummaryEVToEbitda:    ScaleAsIs,
	SummaryEVToRevenue:   ScaleAsIs,
	SummaryTrailingPE:    ScaleAsIs,
	SummaryRevenue:       ScaleBillions,
	SummaryEbitda:        ScaleBillions,
	SummaryRevenueGrowth: ScaleFraction,
	SummaryEbitdaMargins: ScaleFraction,
}

// ScaleOf returns the declared convention for f. Undeclared fields are
// treated as already scaled.
func ScaleOf(f Field) Scale {
	return fieldScales[f]
}

// Scaled converts a raw upstream value of field f to the model unit.
func Scaled(f Field, raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	switch ScaleOf(f) {
	case ScaleBillions:
		return raw / 1e9
	case ScaleFraction:
		return raw * 100
	default:
		return raw
	}
}

func finVal(f Field, v *yfFinVal) float64 {
	if v == nil {
		return 0
	}
	return Scaled(f, v.Raw)
}

func plain(f Field, v *float64) float64 {
	if v == nil {
		return 0
	}
	return Scaled(f, *v)
}

// multiple clamps a valuation multiple to the non-negative domain. A
// negative multiple (loss-making company) is reported as unknown.
func multiple(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// shellStock is the zero-filled record for a known universe member.
func shellStock(e models.UniverseEntry) models.Stock {
	return models.Stock{
		Ticker: e.Ticker,
		Name:   e.Name,
		Sector: e.Sector,
	}
}

// NormalizeSummary maps a quoteSummary result into the screener and comps
// shapes. entry, when non-nil, supplies the sector if the profile module is
// missing.
func NormalizeSummary(ticker string, r *yfQuoteSummaryResult, entry *models.UniverseEntry) (models.Stock, models.CompsRow) {
	sym := strings.ToUpper(ticker)
	var (
		p     yfPrice
		stats yfDefaultKeyStatistics
		sd    yfSummaryDetail
		fin   yfFinancialData
		prof  yfAssetProfile
	)
	if r != nil {
		if r.Price != nil {
			p = *r.Price
		}
		if r.DefaultKeyStatistics != nil {
			stats = *r.DefaultKeyStatistics
		}
		if r.SummaryDetail != nil {
			sd = *r.SummaryDetail
		}
		if r.FinancialData != nil {
			fin = *r.FinancialData
		}
		if r.AssetProfile != nil {
			prof = *r.AssetProfile
		}
	}

	name := firstNonEmpty(p.ShortName, p.LongName, sym)
	sector := prof.Sector
	if sector == "" && entry != nil {
		sector = entry.Sector
	}
	if sector == "" {
		sector = "Unknown"
	}

	marketCap := finVal(SummaryMarketCap, p.MarketCap)
	pe := multiple(finVal(SummaryTrailingPE, sd.TrailingPE))
	evEbitda := multiple(finVal(SummaryEVToEbitda, stats.EnterpriseToEbitda))

	row := models.CompsRow{
		Ticker:    sym,
		Name:      name,
		MarketCap: marketCap,
		EV:        finVal(SummaryEV, stats.EnterpriseValue),
		Revenue:   finVal(SummaryRevenue, fin.TotalRevenue),
		EBITDA:    finVal(SummaryEbitda, fin.Ebitda),
		PERatio:   pe,
		EVEbitda:  evEbitda,
		EVRevenue: multiple(finVal(SummaryEVToRevenue, stats.EnterpriseToRevenue)),
	}

	stock := models.Stock{
		Ticker:           sym,
		Name:             name,
		Sector:           sector,
		Price:            finVal(SummaryPrice, p.RegularMarketPrice),
		Change1D:         finVal(SummaryChangePercent, p.RegularMarketChangePercent),
		MarketCap:        marketCap,
		PERatio:          pe,
		PBRatio:          multiple(finVal(SummaryPriceToBook, stats.PriceToBook)),
		EVEbitda:         evEbitda,
		RevenueGrowthYoY: finVal(SummaryRevenueGrowth, fin.RevenueGrowth),
		EBITDAMargin:     finVal(SummaryEbitdaMargins, fin.EbitdaMargins),
	}
	return stock, row
}

// NormalizeQuote overlays a batch quote row onto the universe entry's
// shell. A nil quote yields the shell unchanged.
func NormalizeQuote(entry models.UniverseEntry, q *yfQuoteResult) models.Stock {
	s := shellStock(entry)
	if q == nil {
		return s
	}
	s.Name = firstNonEmpty(q.ShortName, entry.Name)
	s.Price = plain(QuotePrice, q.RegularMarketPrice)
	s.Change1D = plain(QuoteChangePercent, q.RegularMarketChangePercent)
	s.MarketCap = plain(QuoteMarketCap, q.MarketCap)
	s.PERatio = multiple(plain(QuoteTrailingPE, q.TrailingPE))
	s.PBRatio = multiple(plain(QuotePriceToBook, q.PriceToBook))
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
