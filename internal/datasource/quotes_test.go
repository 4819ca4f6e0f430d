package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/infra"
	"github.com/seenimoa/researchdesk/pkg/models"
)

type fakeProvider struct {
	mu           sync.Mutex
	summaries    map[string]*yfQuoteSummaryResult
	quotes       map[string]yfQuoteResult
	summaryErr   error
	quotesErr    error
	summaryCalls atomic.Int32
	batches      [][]string
}

func (f *fakeProvider) Summary(_ context.Context, ticker string) (*yfQuoteSummaryResult, error) {
	f.summaryCalls.Add(1)
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	r, ok := f.summaries[ticker]
	if !ok {
		return nil, ErrTickerNotFound
	}
	return r, nil
}

func (f *fakeProvider) Quotes(_ context.Context, symbols []string) ([]yfQuoteResult, error) {
	f.mu.Lock()
	f.batches = append(f.batches, symbols)
	f.mu.Unlock()
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	var out []yfQuoteResult
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func testQuotesConfig() config.QuotesConfig {
	return config.QuotesConfig{BatchSize: 2, QuoteTTL: 60, UniverseTTL: 300, FallbackTTL: 30}
}

func testEntries() []models.UniverseEntry {
	return []models.UniverseEntry{
		{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology"},
		{Ticker: "MSFT", Name: "Microsoft Corp.", Sector: "Technology"},
		{Ticker: "JPM", Name: "JPMorgan Chase", Sector: "Financial Services"},
	}
}

func TestLookupLive(t *testing.T) {
	p := &fakeProvider{summaries: map[string]*yfQuoteSummaryResult{
		"AAPL": {Price: &yfPrice{ShortName: "Apple", RegularMarketPrice: fv(190)}},
	}}
	svc := newQuoteService(p, testEntries(), testQuotesConfig(), infra.NopLogger())

	res, err := svc.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, res.Live)
	require.NotNil(t, res.Stock)
	assert.Equal(t, 190.0, res.Stock.Price)
	assert.Equal(t, "Technology", res.Stock.Sector, "sector from universe when profile is missing")
	require.NotNil(t, res.CompsRow)

	// second call is served from cache
	res.Stock.Price = 1
	again, err := svc.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 190.0, again.Stock.Price, "cached result must not alias caller copies")
	assert.Equal(t, int32(1), p.summaryCalls.Load())
}

func TestLookupFallback(t *testing.T) {
	p := &fakeProvider{summaryErr: ErrUpstream}
	svc := newQuoteService(p, testEntries(), testQuotesConfig(), infra.NopLogger())

	res, err := svc.Lookup(context.Background(), "JPM")
	require.NoError(t, err)
	assert.False(t, res.Live)
	require.NotNil(t, res.CompsRow)
	assert.Equal(t, "JPMorgan Chase", res.CompsRow.Name)

	_, err = svc.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrTickerNotFound)
}

func TestLookupManyDropsFailures(t *testing.T) {
	p := &fakeProvider{summaries: map[string]*yfQuoteSummaryResult{
		"AAPL": {Price: &yfPrice{ShortName: "Apple"}},
		"MSFT": {Price: &yfPrice{ShortName: "Microsoft"}},
	}}
	svc := newQuoteService(p, testEntries(), testQuotesConfig(), infra.NopLogger())

	out := svc.LookupMany(context.Background(), []string{"AAPL", "QQQQ", "MSFT"})
	require.Len(t, out, 3)
	assert.Equal(t, "Apple", out[0].Stock.Name)
	assert.Nil(t, out[1])
	assert.Equal(t, "Microsoft", out[2].Stock.Name)
}

func TestUniverseLiveAndCached(t *testing.T) {
	p := &fakeProvider{quotes: map[string]yfQuoteResult{
		"AAPL": {Symbol: "AAPL", ShortName: "Apple", RegularMarketPrice: fp(190), MarketCap: fp(2.9e12)},
		"JPM":  {Symbol: "JPM", RegularMarketPrice: fp(200), MarketCap: fp(5.7e11)},
	}}
	svc := newQuoteService(p, testEntries(), testQuotesConfig(), infra.NopLogger())

	res := svc.Universe(context.Background())
	assert.True(t, res.Live)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Stocks, 3)
	assert.Equal(t, "Apple", res.Stocks[0].Name)
	assert.InDelta(t, 2900, res.Stocks[0].MarketCap, 1e-9)
	assert.Zero(t, res.Stocks[1].Price, "missing quote yields a shell")
	assert.Equal(t, "JPMorgan Chase", res.Stocks[2].Name)

	// batch size 2 splits three tickers into two chunks
	assert.Len(t, p.batches, 2)

	svc.Universe(context.Background())
	assert.Len(t, p.batches, 2, "second call served from cache")
}

func TestUniverseFailureServesShells(t *testing.T) {
	p := &fakeProvider{quotesErr: errors.New("boom")}
	svc := newQuoteService(p, testEntries(), testQuotesConfig(), infra.NopLogger())

	res := svc.Universe(context.Background())
	assert.False(t, res.Live)
	assert.Equal(t, 3, res.Total)
	for _, s := range res.Stocks {
		assert.Zero(t, s.Price)
		assert.NotEmpty(t, s.Sector)
	}
}

func TestRefresherRunNow(t *testing.T) {
	p := &fakeProvider{quotes: map[string]yfQuoteResult{}}
	svc := newQuoteService(p, testEntries(), testQuotesConfig(), infra.NopLogger())

	var got *models.UniverseResult
	r := NewRefresher(svc, infra.NopLogger(), func(res *models.UniverseResult) { got = res })
	r.RunNow()
	require.NotNil(t, got)
	assert.True(t, got.Live)

	require.NoError(t, r.Start("@every 1h"))
	r.Stop()

	assert.Error(t, NewRefresher(svc, infra.NopLogger(), nil).Start("not a schedule"))
}

func TestRefresherSweepsExpiredQuotes(t *testing.T) {
	summaries := map[string]*yfQuoteSummaryResult{}
	for i := range 500 {
		summaries[fmt.Sprintf("T%03d", i)] = &yfQuoteSummaryResult{Price: &yfPrice{RegularMarketPrice: fv(10)}}
	}
	p := &fakeProvider{summaries: summaries, quotes: map[string]yfQuoteResult{}}
	svc := newQuoteService(p, testEntries(), testQuotesConfig(), infra.NopLogger())
	svc.quotes = infra.NewCache[models.QuoteResult](time.Millisecond)

	for ticker := range summaries {
		_, err := svc.Lookup(context.Background(), ticker)
		require.NoError(t, err)
	}
	require.Equal(t, 500, svc.quotes.Len())

	time.Sleep(5 * time.Millisecond)
	NewRefresher(svc, infra.NopLogger(), nil).RunNow()
	assert.Zero(t, svc.quotes.Len())
	assert.Equal(t, 1, svc.batch.Len())
}
