package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/researchdesk/internal/analysis/sentiment"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/screener"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

// tickerParam reads and normalizes the {ticker} URL parameter, writing a
// 400 when it is not a plausible symbol.
func tickerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	t := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if !utils.IsValidTicker(t) {
		writeError(w, http.StatusBadRequest, "invalid ticker")
		return "", false
	}
	return t, true
}

func (s *Server) markWatchlisted(stocks []models.Stock) {
	watched := make(map[string]bool)
	for _, t := range s.ws.Watchlist() {
		watched[t] = true
	}
	for i := range stocks {
		stocks[i].IsWatchlisted = watched[stocks[i].Ticker]
	}
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}

	res, err := s.quotes.Lookup(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, datasource.ErrTickerNotFound) {
			writeError(w, http.StatusNotFound, datasource.NotFoundMessage(ticker))
			return
		}
		s.writeDomainError(w, err)
		return
	}
	if res.Stock != nil {
		res.Stock.IsWatchlisted = s.ws.IsWatchlisted(ticker)
	}
	writeOK(w, res)
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	u := s.quotes.Universe(r.Context())
	s.markWatchlisted(u.Stocks)
	writeOK(w, u)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	articles, err := s.news.Headlines(r.Context(), ticker, limit)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("headlines unavailable")
		writeError(w, http.StatusBadGateway, "headlines unavailable")
		return
	}
	writeOK(w, sentiment.Annotate(articles))
}

func (s *Server) handleNewsTone(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	articles, err := s.news.Headlines(r.Context(), ticker, 0)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("headlines unavailable")
		writeError(w, http.StatusBadGateway, "headlines unavailable")
		return
	}
	writeOK(w, sentiment.Summarize(ticker, articles, s.now()))
}

// ScreenRequest is the body of POST /screen. Source picks the pool:
// "universe" (default) is the batch universe plus custom stocks, "custom"
// is the custom stocks alone.
type ScreenRequest struct {
	screener.Filters
	Source string `json:"source" validate:"omitempty,oneof=universe custom"`
}

// ScreenResponse is the screener output.
type ScreenResponse struct {
	Stocks   []models.Stock `json:"stocks"`
	Total    int            `json:"total"`
	Complete int            `json:"complete"`
	Sectors  []string       `json:"sectors"`
	Live     bool           `json:"live"`
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req ScreenRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Filters.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var pool []models.Stock
	live := true
	if req.Source == "custom" {
		pool = s.ws.CustomStocks()
	} else {
		u := s.quotes.Universe(r.Context())
		pool = s.ws.Pool(u.Stocks)
		live = u.Live
	}

	rows := screener.Apply(pool, req.Filters, s.ws.Watchlist())
	writeOK(w, ScreenResponse{
		Stocks:   rows,
		Total:    len(pool),
		Complete: screener.CompleteCount(pool),
		Sectors:  screener.Sectors(pool),
		Live:     live,
	})
}

func normalize(ticker string) string {
	return utils.NormalizeTicker(ticker)
}
