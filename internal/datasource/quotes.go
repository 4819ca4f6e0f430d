package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/infra"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// quoteProvider is the upstream surface the service needs.
type quoteProvider interface {
	Summary(ctx context.Context, ticker string) (*yfQuoteSummaryResult, error)
	Quotes(ctx context.Context, symbols []string) ([]yfQuoteResult, error)
}

const universeCacheKey = "universe"

// QuoteService serves single-ticker lookups and the batch universe quote,
// caching both and degrading to local records when the provider fails.
type QuoteService struct {
	provider    quoteProvider
	entries     []models.UniverseEntry
	batchSize   int
	universeTTL time.Duration
	fallbackTTL time.Duration
	quotes      *infra.Cache[models.QuoteResult]
	batch       *infra.Cache[models.UniverseResult]
	logger      arbor.ILogger
	now         func() time.Time
}

// NewQuoteService wires a service over the Yahoo client.
func NewQuoteService(yf *YFinance, cfg config.QuotesConfig, logger arbor.ILogger) *QuoteService {
	return newQuoteService(yf, Universe(), cfg, logger)
}

func newQuoteService(p quoteProvider, entries []models.UniverseEntry, cfg config.QuotesConfig, logger arbor.ILogger) *QuoteService {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	return &QuoteService{
		provider:    p,
		entries:     entries,
		batchSize:   batchSize,
		universeTTL: seconds(cfg.UniverseTTL, 300),
		fallbackTTL: seconds(cfg.FallbackTTL, 30),
		quotes:      infra.NewCache[models.QuoteResult](seconds(cfg.QuoteTTL, 60)),
		batch:       infra.NewCache[models.UniverseResult](seconds(cfg.UniverseTTL, 300)),
		logger:      logger,
		now:         time.Now,
	}
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

// Lookup resolves one ticker. On provider failure it answers from the
// static records with Live=false, or ErrTickerNotFound when the ticker is
// unknown locally too.
func (s *QuoteService) Lookup(ctx context.Context, ticker string) (*models.QuoteResult, error) {
	if cached, ok := s.quotes.Get(ticker); ok {
		return cloneResult(cached), nil
	}

	summary, err := s.provider.Summary(ctx, ticker)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("quoteSummary failed, using local fallback")
		res, ferr := fallbackResult(ticker)
		if ferr != nil {
			return nil, ferr
		}
		s.quotes.SetWithTTL(ticker, *res, s.fallbackTTL)
		return cloneResult(*res), nil
	}

	var entry *models.UniverseEntry
	if e, ok := UniverseEntryFor(ticker); ok {
		entry = &e
	}
	stock, row := NormalizeSummary(ticker, summary, entry)
	res := models.QuoteResult{Stock: &stock, CompsRow: &row, Live: true}
	s.quotes.Set(ticker, res)
	return cloneResult(res), nil
}

// LookupMany resolves every ticker concurrently and returns once all of
// them have completed. Results align with tickers; a failed lookup leaves
// a nil slot.
func (s *QuoteService) LookupMany(ctx context.Context, tickers []string) []*models.QuoteResult {
	out := make([]*models.QuoteResult, len(tickers))
	var g errgroup.Group
	for i, t := range tickers {
		g.Go(func() error {
			res, err := s.Lookup(ctx, t)
			if err != nil {
				s.logger.Debug().Err(err).Str("ticker", t).Msg("lookup dropped")
				return nil
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Universe returns the batch quote over the fixed universe, from cache
// when fresh.
func (s *QuoteService) Universe(ctx context.Context) *models.UniverseResult {
	if cached, ok := s.batch.Get(universeCacheKey); ok {
		return cloneUniverse(cached)
	}
	return s.RefreshUniverse(ctx)
}

// RefreshUniverse fetches the batch quote bypassing the cache. Tickers are
// chunked and chunks fetched concurrently; any chunk failure turns the
// whole batch into zero-filled shells with Live=false.
func (s *QuoteService) RefreshUniverse(ctx context.Context) *models.UniverseResult {
	chunks := chunk(tickersOf(s.entries), s.batchSize)
	results := make([][]yfQuoteResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chunks {
		g.Go(func() error {
			rows, err := s.provider.Quotes(gctx, c)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}

	res := models.UniverseResult{FetchedAt: s.now()}
	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Int("tickers", len(s.entries)).Msg("batch quote failed, serving shell records")
		res.Stocks = shells(s.entries)
		res.Total = len(res.Stocks)
		if !errors.Is(err, context.Canceled) {
			s.batch.SetWithTTL(universeCacheKey, res, s.fallbackTTL)
		}
		return cloneUniverse(res)
	}

	byTicker := make(map[string]*yfQuoteResult)
	for _, rows := range results {
		for i := range rows {
			byTicker[rows[i].Symbol] = &rows[i]
		}
	}
	res.Stocks = make([]models.Stock, len(s.entries))
	for i, e := range s.entries {
		res.Stocks[i] = NormalizeQuote(e, byTicker[e.Ticker])
	}
	res.Live = true
	res.Total = len(res.Stocks)
	s.batch.SetWithTTL(universeCacheKey, res, s.universeTTL)

	s.logger.Info().Int("tickers", res.Total).Int("batches", len(chunks)).Msg("universe quotes refreshed")
	return cloneUniverse(res)
}

// Cleanup drops expired quotes and batches and returns how many went.
func (s *QuoteService) Cleanup() int {
	n := s.quotes.Cleanup() + s.batch.Cleanup()
	if n > 0 {
		s.logger.Debug().Int("evicted", n).Int("cached", s.quotes.Len()).Msg("quote cache swept")
	}
	return n
}

func tickersOf(entries []models.UniverseEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Ticker
	}
	return out
}

func shells(entries []models.UniverseEntry) []models.Stock {
	out := make([]models.Stock, len(entries))
	for i, e := range entries {
		out[i] = shellStock(e)
	}
	return out
}

// chunk splits items into consecutive slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}

func cloneResult(r models.QuoteResult) *models.QuoteResult {
	out := models.QuoteResult{Live: r.Live}
	if r.Stock != nil {
		s := *r.Stock
		out.Stock = &s
	}
	if r.CompsRow != nil {
		c := *r.CompsRow
		out.CompsRow = &c
	}
	return &out
}

func cloneUniverse(r models.UniverseResult) *models.UniverseResult {
	out := r
	out.Stocks = append([]models.Stock(nil), r.Stocks...)
	return &out
}
