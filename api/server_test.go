package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/infra"
	"github.com/seenimoa/researchdesk/internal/storage"
	"github.com/seenimoa/researchdesk/internal/workspace"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fakeQuotes struct {
	stocks []models.Stock
	pe     map[string]float64
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{
		stocks: []models.Stock{
			{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology", Price: 200, MarketCap: 3000, PERatio: 30},
			{Ticker: "MSFT", Name: "Microsoft Corp.", Sector: "Technology", Price: 400, MarketCap: 2900, PERatio: 35},
			{Ticker: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", Price: 170, MarketCap: 2000, PERatio: 25},
			{Ticker: "META", Name: "Meta Platforms", Sector: "Technology", Price: 500, MarketCap: 1200, PERatio: 20},
			{Ticker: "JPM", Name: "JPMorgan Chase", Sector: "Financials", Price: 190, MarketCap: 550, PERatio: 11},
		},
	}
}

func (f *fakeQuotes) find(ticker string) (models.Stock, bool) {
	for _, s := range f.stocks {
		if s.Ticker == ticker {
			return s, true
		}
	}
	return models.Stock{}, false
}

func (f *fakeQuotes) Lookup(_ context.Context, ticker string) (*models.QuoteResult, error) {
	s, ok := f.find(ticker)
	if !ok {
		return nil, datasource.ErrTickerNotFound
	}
	return &models.QuoteResult{
		Stock: &s,
		CompsRow: &models.CompsRow{
			Ticker:    s.Ticker,
			Name:      s.Name,
			MarketCap: s.MarketCap,
			PERatio:   s.PERatio,
			EVEbitda:  s.PERatio / 2,
		},
		Live: true,
	}, nil
}

func (f *fakeQuotes) LookupMany(ctx context.Context, tickers []string) []*models.QuoteResult {
	out := make([]*models.QuoteResult, len(tickers))
	for i, t := range tickers {
		out[i], _ = f.Lookup(ctx, t)
	}
	return out
}

func (f *fakeQuotes) Universe(context.Context) *models.UniverseResult {
	stocks := make([]models.Stock, len(f.stocks))
	copy(stocks, f.stocks)
	return &models.UniverseResult{Stocks: stocks, Live: true, Total: len(stocks)}
}

type fakeNews struct {
	err error
}

func (f fakeNews) Headlines(_ context.Context, ticker string, _ int) ([]models.NewsArticle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.NewsArticle{{Title: ticker + " beats estimates", URL: "https://example.com/a"}}, nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	ws := workspace.New(storage.New(storage.NewMemory(0), nil), nil)
	cfg := &config.Config{Server: config.ServerConfig{Port: 8080}}
	srv := NewServer(cfg, newFakeQuotes(), fakeNews{}, ws, infra.NopLogger())
	srv.now = func() time.Time { return time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.wsHub.Run(ctx)
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

// decodeData decodes the envelope and unmarshals its data into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) APIResponse {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env), "decode response")
	if v != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, v), "decode data")
	}
	return APIResponse{Success: env.Success, Error: env.Error}
}

// ════════════════════════════════════════════════════════════════════
// Health and market data
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		var data map[string]interface{}
		resp := decodeData(t, rec, &data)
		assert.True(t, resp.Success)
		assert.Equal(t, "ok", data["status"])
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		allowOrigin bool
		credentials string
	}{
		{"wildcard default", nil, "http://evil.example", true, ""},
		{"explicit star", []string{"*"}, "http://evil.example", true, ""},
		{"listed origin", []string{"http://desk.local"}, "http://desk.local", true, "true"},
		{"unlisted origin", []string{"http://desk.local"}, "http://evil.example", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := workspace.New(storage.New(storage.NewMemory(0), nil), nil)
			cfg := &config.Config{Server: config.ServerConfig{Port: 8080, CORSOrigins: tt.origins}}
			srv := NewServer(cfg, newFakeQuotes(), fakeNews{}, ws, infra.NopLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.allowOrigin, rec.Header().Get("Access-Control-Allow-Origin") != "")
			assert.Equal(t, tt.credentials, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestQuote(t *testing.T) {
	srv := testServer(t)
	do(t, srv, http.MethodPost, "/api/v1/watchlist", `{"ticker":"aapl"}`)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/api/v1/quote/aapl", http.StatusOK},
		{"not found", "/api/v1/quote/ZZZZ", http.StatusNotFound},
		{"invalid", "/api/v1/quote/BAD$$", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus != http.StatusOK {
				return
			}
			var res models.QuoteResult
			decodeData(t, rec, &res)
			require.NotNil(t, res.Stock)
			assert.Equal(t, "AAPL", res.Stock.Ticker)
			assert.True(t, res.Stock.IsWatchlisted)
		})
	}

	rec := do(t, srv, http.MethodGet, "/api/v1/quote/ZZZZ", "")
	resp := decodeData(t, rec, nil)
	assert.Equal(t, datasource.NotFoundMessage("ZZZZ"), resp.Error)
}

func TestNews(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv, http.MethodGet, "/api/v1/news/msft?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var articles []models.NewsArticle
	decodeData(t, rec, &articles)
	require.Len(t, articles, 1)
	assert.Equal(t, "MSFT beats estimates", articles[0].Title)
	assert.Equal(t, "positive", articles[0].Tone)

	rec = do(t, srv, http.MethodGet, "/api/v1/news/msft/tone", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tone struct {
		Tone     string `json:"tone"`
		Articles int    `json:"articles"`
	}
	decodeData(t, rec, &tone)
	assert.Equal(t, "positive", tone.Tone)
	assert.Equal(t, 1, tone.Articles)

	srv.news = fakeNews{err: datasource.ErrUpstream}
	rec = do(t, srv, http.MethodGet, "/api/v1/news/msft", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestScreen(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/screen", `{"sector":"Technology","sort_by":"market_cap","sort_dir":"desc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res ScreenResponse
	decodeData(t, rec, &res)
	require.Len(t, res.Stocks, 4)
	assert.Equal(t, "AAPL", res.Stocks[0].Ticker)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, []string{"Financials", "Technology"}, res.Sectors)

	t.Run("bad source", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/screen", `{"source":"everything"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("unknown field", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/screen", `{"colour":"red"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("custom source starts empty", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/screen", `{"source":"custom"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var res ScreenResponse
		decodeData(t, rec, &res)
		assert.Empty(t, res.Stocks)
		assert.NotNil(t, res.Stocks)
	})
}

// ════════════════════════════════════════════════════════════════════
// Watchlist and custom universe
// ════════════════════════════════════════════════════════════════════

func TestWatchlistEndpoints(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/watchlist", `{"ticker":"msft"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []string
	decodeData(t, rec, &list)
	assert.Equal(t, []string{"MSFT"}, list)

	rec = do(t, srv, http.MethodPut, "/api/v1/watchlist/msft/toggle", "")
	var toggled map[string]interface{}
	decodeData(t, rec, &toggled)
	assert.Equal(t, false, toggled["watched"])

	rec = do(t, srv, http.MethodPost, "/api/v1/watchlist", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomUniverse(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/universe", `{"ticker":"jpm"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/universe", "")
	var stocks []models.Stock
	decodeData(t, rec, &stocks)
	require.Len(t, stocks, 1)
	assert.Equal(t, "JPM", stocks[0].Ticker)

	rec = do(t, srv, http.MethodPost, "/api/v1/universe", `{"ticker":"NOPE"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/v1/universe/jpm", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/v1/universe/jpm", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// Comps
// ════════════════════════════════════════════════════════════════════

func generate(t *testing.T, srv *Server, anchor string) models.WorkingSet {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/v1/comps/generate", `{"anchor":"`+anchor+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ws models.WorkingSet
	decodeData(t, rec, &ws)
	return ws
}

func TestGenerateComps(t *testing.T) {
	srv := testServer(t)

	ws := generate(t, srv, "aapl")
	assert.Equal(t, "AAPL", ws.AnchorTicker)
	assert.Equal(t, []string{"MSFT", "GOOGL", "META", "JPM"}, ws.CompTickers)

	rec := do(t, srv, http.MethodPost, "/api/v1/comps/generate", `{"anchor":"TSLA"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPeerEndpoints(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/comps/peers", `{"ticker":"MSFT"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no working set yet")

	generate(t, srv, "AAPL")
	rec = do(t, srv, http.MethodPost, "/api/v1/comps/peers", `{"ticker":"MSFT"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/v1/comps/peers/JPM", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ws models.WorkingSet
	decodeData(t, rec, &ws)
	assert.NotContains(t, ws.CompTickers, "JPM")

	rec = do(t, srv, http.MethodDelete, "/api/v1/comps/peers/JPM", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompsTable(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv, http.MethodGet, "/api/v1/comps/table", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	generate(t, srv, "AAPL")
	rec = do(t, srv, http.MethodGet, "/api/v1/comps/table", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var table CompsTableResponse
	decodeData(t, rec, &table)
	require.Len(t, table.Rows, 5)
	assert.Equal(t, "AAPL", table.Rows[0].Ticker)
	require.NotNil(t, table.Median)
	// P/E: 30 35 25 20 11
	assert.InDelta(t, 25.0, table.Median.PERatio, 1e-9)
	assert.Equal(t, 200.0, table.Valuation.AnchorPrice)
	require.NotNil(t, table.Valuation.PE.PremiumPct)
	assert.InDelta(t, 20.0, *table.Valuation.PE.PremiumPct, 1e-9)
	require.NotNil(t, table.Valuation.PE.ImpliedPrice)
	assert.InDelta(t, 200.0*25/30, *table.Valuation.PE.ImpliedPrice, 1e-9)
	assert.True(t, table.Live)
}

func TestOverridesFeedTable(t *testing.T) {
	srv := testServer(t)
	generate(t, srv, "AAPL")

	rec := do(t, srv, http.MethodPut, "/api/v1/comps/overrides/aapl", `{"metric":"pe_ratio","value":50}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPut, "/api/v1/comps/overrides/aapl", `{"metric":"pe_ratio","value":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, srv, http.MethodPut, "/api/v1/comps/overrides/aapl", `{"metric":"beta","value":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/comps/table", "")
	var table CompsTableResponse
	decodeData(t, rec, &table)
	require.NotEmpty(t, table.Rows)
	assert.Equal(t, 50.0, table.Rows[0].PERatio)
	assert.Equal(t, 50.0, table.Overrides["AAPL"].PERatio)

	rec = do(t, srv, http.MethodDelete, "/api/v1/comps/overrides", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/v1/comps/overrides", "")
	var o map[string]models.MultipleOverrides
	decodeData(t, rec, &o)
	assert.Empty(t, o)
}

func TestExportCSV(t *testing.T) {
	srv := testServer(t)
	generate(t, srv, "AAPL")

	rec := do(t, srv, http.MethodGet, "/api/v1/comps/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "comps-AAPL-2025-06-02.csv")

	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Ticker,Name,"))
	assert.True(t, strings.HasPrefix(lines[1], `AAPL,"Apple Inc.",`))
}

// ════════════════════════════════════════════════════════════════════
// Thesis
// ════════════════════════════════════════════════════════════════════

func TestThesisEndpoints(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/thesis/aapl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var note models.ThesisNote
	decodeData(t, rec, &note)
	assert.Equal(t, "AAPL", note.Ticker)
	assert.Len(t, note.Checklist, len(workspace.DefaultChecklist()))

	rec = do(t, srv, http.MethodPut, "/api/v1/thesis/aapl", `{"bull":"Services growth","target_price":"240"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	id := workspace.DefaultChecklist()[0].ID
	rec = do(t, srv, http.MethodPost, "/api/v1/thesis/aapl/checklist/"+id+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &note)
	assert.Equal(t, "Services growth", note.Bull)
	assert.Equal(t, 1, note.DoneCount())

	rec = do(t, srv, http.MethodPost, "/api/v1/thesis/aapl/checklist/nope/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/checklist/phases", "")
	var phases struct {
		Phases []models.ChecklistPhase `json:"phases"`
		Items  []models.ChecklistItem  `json:"items"`
	}
	decodeData(t, rec, &phases)
	assert.Len(t, phases.Phases, len(workspace.Phases()))
	assert.Len(t, phases.Items, len(workspace.DefaultChecklist()))
}

// ════════════════════════════════════════════════════════════════════
// Research sets
// ════════════════════════════════════════════════════════════════════

func TestResearchLifecycle(t *testing.T) {
	srv := testServer(t)
	generate(t, srv, "AAPL")
	do(t, srv, http.MethodGet, "/api/v1/comps/table", "")
	do(t, srv, http.MethodPut, "/api/v1/thesis/aapl", `{"bull":"**Services** margin"}`)

	rec := do(t, srv, http.MethodPost, "/api/v1/research", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/v1/research", `{"name":"Apple Q2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var set models.ResearchSet
	decodeData(t, rec, &set)
	require.NotEmpty(t, set.ID)
	assert.Equal(t, "AAPL", set.AnchorTicker)
	assert.Len(t, set.CompsSnapshot, 5)
	require.NotNil(t, set.Thesis)

	rec = do(t, srv, http.MethodPatch, "/api/v1/research/"+set.ID, `{"assumptions":"WACC 9%"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &set)
	assert.Equal(t, "WACC 9%", set.Assumptions)

	rec = do(t, srv, http.MethodGet, "/api/v1/research/"+set.ID+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<strong>Services</strong>")

	rec = do(t, srv, http.MethodGet, "/api/v1/research/"+set.ID+"/report?format=text", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "AAPL")

	rec = do(t, srv, http.MethodGet, "/api/v1/research", "")
	var sets []models.ResearchSet
	decodeData(t, rec, &sets)
	assert.Len(t, sets, 1)

	rec = do(t, srv, http.MethodDelete, "/api/v1/research/"+set.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/v1/research/"+set.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// WebSocket hub
// ════════════════════════════════════════════════════════════════════

func TestWSHubStopsWithContext(t *testing.T) {
	hub := NewWSHub(infra.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	hub.Publish(EventResearchSaved, map[string]string{"id": "x"})
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.False(t, hub.Register(&WSClient{send: make(chan WSMessage, 1)}), "register after stop")
	assert.Equal(t, 0, hub.ClientCount())
}
