package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seenimoa/researchdesk/pkg/models"
)

func fv(v float64) *yfFinVal { return &yfFinVal{Raw: v} }
func fp(v float64) *float64  { return &v }

func TestScaled(t *testing.T) {
	tests := []struct {
		field Field
		raw   float64
		want  float64
	}{
		{SummaryMarketCap, 2.5e12, 2500},
		{SummaryChangePercent, 0.0082, 0.82},
		{QuoteChangePercent, 0.82, 0.82},
		{SummaryRevenueGrowth, -0.05, -5},
		{SummaryTrailingPE, 28.4, 28.4},
		{QuoteMarketCap, 1e9, 1},
		{Field("unknown.field"), 7, 7},
	}
	for _, tt := range tests {
		got := Scaled(tt.field, tt.raw)
		assert.InDelta(t, tt.want, got, 1e-9, "Scaled(%s, %v)", tt.field, tt.raw)
	}
}

func TestPercentConventionsDifferByEndpoint(t *testing.T) {
	assert.Equal(t, ScaleFraction, ScaleOf(SummaryChangePercent))
	assert.Equal(t, ScaleAsIs, ScaleOf(QuoteChangePercent))
}

func TestNormalizeSummaryFull(t *testing.T) {
	r := &yfQuoteSummaryResult{
		Price: &yfPrice{
			ShortName:                  "Apple Inc.",
			LongName:                   "Apple Incorporated",
			RegularMarketPrice:         fv(190.5),
			RegularMarketChangePercent: fv(0.0123),
			MarketCap:                  fv(2.95e12),
		},
		AssetProfile: &yfAssetProfile{Sector: "Technology"},
		DefaultKeyStatistics: &yfDefaultKeyStatistics{
			EnterpriseValue:     fv(2.9e12),
			PriceToBook:         fv(45.1),
			EnterpriseToEbitda:  fv(22.4),
			EnterpriseToRevenue: fv(7.3),
		},
		SummaryDetail: &yfSummaryDetail{TrailingPE: fv(30.2)},
		FinancialData: &yfFinancialData{
			TotalRevenue:  fv(3.943e11),
			Ebitda:        fv(1.305e11),
			RevenueGrowth: fv(0.061),
			EbitdaMargins: fv(0.331),
		},
	}

	stock, row := NormalizeSummary("aapl", r, nil)

	assert.Equal(t, "AAPL", stock.Ticker)
	assert.Equal(t, "Apple Inc.", stock.Name)
	assert.Equal(t, "Technology", stock.Sector)
	assert.InDelta(t, 190.5, stock.Price, 1e-9)
	assert.InDelta(t, 1.23, stock.Change1D, 1e-9)
	assert.InDelta(t, 2950, stock.MarketCap, 1e-9)
	assert.InDelta(t, 30.2, stock.PERatio, 1e-9)
	assert.InDelta(t, 45.1, stock.PBRatio, 1e-9)
	assert.InDelta(t, 22.4, stock.EVEbitda, 1e-9)
	assert.InDelta(t, 6.1, stock.RevenueGrowthYoY, 1e-9)
	assert.InDelta(t, 33.1, stock.EBITDAMargin, 1e-9)
	assert.False(t, stock.IsWatchlisted)

	assert.Equal(t, "AAPL", row.Ticker)
	assert.InDelta(t, 2900, row.EV, 1e-9)
	assert.InDelta(t, 394.3, row.Revenue, 1e-9)
	assert.InDelta(t, 130.5, row.EBITDA, 1e-9)
	assert.InDelta(t, 7.3, row.EVRevenue, 1e-9)
	assert.Equal(t, stock.MarketCap, row.MarketCap)
	assert.Equal(t, stock.PERatio, row.PERatio)
}

func TestNormalizeSummaryMissingModules(t *testing.T) {
	entry := &models.UniverseEntry{Ticker: "XYZ", Name: "Xyz Corp", Sector: "Industrials"}

	stock, row := NormalizeSummary("XYZ", &yfQuoteSummaryResult{}, entry)
	assert.Equal(t, "XYZ", stock.Name, "name falls back to ticker")
	assert.Equal(t, "Industrials", stock.Sector, "sector falls back to universe")
	assert.Zero(t, stock.Price)
	assert.Zero(t, row.EV)

	stock, _ = NormalizeSummary("XYZ", nil, nil)
	assert.Equal(t, "Unknown", stock.Sector)

	stock, _ = NormalizeSummary("XYZ", &yfQuoteSummaryResult{Price: &yfPrice{LongName: "Long Name"}}, nil)
	assert.Equal(t, "Long Name", stock.Name)
}

func TestNormalizeSummaryNegativeMultiplesAreUnknown(t *testing.T) {
	r := &yfQuoteSummaryResult{
		SummaryDetail:        &yfSummaryDetail{TrailingPE: fv(-12)},
		DefaultKeyStatistics: &yfDefaultKeyStatistics{EnterpriseToEbitda: fv(-3)},
	}
	stock, row := NormalizeSummary("LOSS", r, nil)
	assert.Zero(t, stock.PERatio)
	assert.Zero(t, row.EVEbitda)
}

func TestNormalizeQuote(t *testing.T) {
	entry := models.UniverseEntry{Ticker: "MSFT", Name: "Microsoft Corp.", Sector: "Technology"}

	shell := NormalizeQuote(entry, nil)
	assert.Equal(t, models.Stock{Ticker: "MSFT", Name: "Microsoft Corp.", Sector: "Technology"}, shell)

	s := NormalizeQuote(entry, &yfQuoteResult{
		Symbol:                     "MSFT",
		RegularMarketPrice:         fp(410.2),
		RegularMarketChangePercent: fp(0.82),
		MarketCap:                  fp(3.05e12),
		TrailingPE:                 fp(35.8),
		PriceToBook:                fp(12.1),
	})
	assert.Equal(t, "Microsoft Corp.", s.Name, "empty shortName keeps universe name")
	assert.InDelta(t, 410.2, s.Price, 1e-9)
	assert.InDelta(t, 0.82, s.Change1D, 1e-9, "v7 percent change is not rescaled")
	assert.InDelta(t, 3050, s.MarketCap, 1e-9)
	assert.InDelta(t, 35.8, s.PERatio, 1e-9)
	assert.InDelta(t, 12.1, s.PBRatio, 1e-9)
	assert.Zero(t, s.EVEbitda)
}

func TestFallbackResult(t *testing.T) {
	res, err := fallbackResult("AAPL")
	assert.NoError(t, err)
	assert.False(t, res.Live)
	if assert.NotNil(t, res.Stock) {
		assert.Equal(t, "Apple Inc.", res.Stock.Name)
		assert.Zero(t, res.Stock.Price)
	}
	if assert.NotNil(t, res.CompsRow) {
		assert.InDelta(t, 30.2, res.CompsRow.PERatio, 1e-9)
	}

	res, err = fallbackResult("NFLX")
	assert.NoError(t, err)
	assert.NotNil(t, res.Stock)
	assert.Nil(t, res.CompsRow, "universe member without static comps")

	_, err = fallbackResult("ZZZZ")
	assert.ErrorIs(t, err, ErrTickerNotFound)
}

func TestUniverseIntegrity(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range Universe() {
		assert.False(t, seen[e.Ticker], "duplicate ticker %s", e.Ticker)
		seen[e.Ticker] = true
		assert.NotEmpty(t, e.Sector)
	}
	for ticker := range fallbackComps {
		_, ok := UniverseEntryFor(ticker)
		assert.True(t, ok, "fallback ticker %s should be in the universe", ticker)
	}
	assert.Contains(t, UniverseSectors(), SectorFinancial)
}

func TestChunk(t *testing.T) {
	items := make([]int, 450)
	chunks := chunk(items, 200)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 200)
	assert.Len(t, chunks[2], 50)
	assert.Empty(t, chunk([]int{}, 200))
}
