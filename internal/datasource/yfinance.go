package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/seenimoa/researchdesk/internal/config"
)

// YFinance is a thin client for the Yahoo Finance v7 quote and v10
// quoteSummary endpoints.
type YFinance struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewYFinance creates a Yahoo Finance client from the quotes config.
func NewYFinance(cfg config.QuotesConfig, logger arbor.ILogger) *YFinance {
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 5
	}
	burst := int(math.Ceil(rps))
	return &YFinance{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  newHTTPClient(cfg.Timeout()),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// Summary fetches the quoteSummary modules for one ticker.
func (y *YFinance) Summary(ctx context.Context, ticker string) (*yfQuoteSummaryResult, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(ticker), summaryModules)

	var resp yfQuoteSummaryResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		var herr *ErrHTTP
		if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return nil, fmt.Errorf("yfinance quoteSummary %s: %w", ticker, err)
	}

	if e := resp.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return nil, fmt.Errorf("%w: yfinance API error: %s", ErrUpstream, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	return &resp.QuoteSummary.Result[0], nil
}

// Quotes fetches one batch of v7 quotes. Unknown symbols are simply missing
// from the result.
func (y *YFinance) Quotes(ctx context.Context, symbols []string) ([]yfQuoteResult, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s",
		y.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	var resp yfQuoteResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("yfinance quote batch of %d: %w", len(symbols), err)
	}
	if e := resp.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("%w: yfinance API error: %s", ErrUpstream, e.Description)
	}
	return resp.QuoteResponse.Result, nil
}

// getJSON waits for the limiter, performs the GET and decodes the body.
// Transport and HTTP failures are wrapped with ErrUpstream.
func (y *YFinance) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := doGet(ctx, y.client, endpoint, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		var herr *ErrHTTP
		if errors.As(err, &herr) {
			return fmt.Errorf("%w: %w", ErrUpstream, herr)
		}
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: parse response: %v", ErrUpstream, err)
	}
	return nil
}
