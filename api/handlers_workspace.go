package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/researchdesk/internal/analysis/fundamental"
	"github.com/seenimoa/researchdesk/internal/comps"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/report"
	"github.com/seenimoa/researchdesk/internal/workspace"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// TickerRequest is a body carrying one ticker.
type TickerRequest struct {
	Ticker string `json:"ticker" validate:"required,max=16"`
}

// ════════════════════════════════════════════════════════════════════
// Watchlist
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.ws.Watchlist())
}

func (s *Server) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	var req TickerRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.ws.AddToWatchlist(req.Ticker) {
		s.wsHub.Publish(EventWatchlistUpdated, s.ws.Watchlist())
	}
	writeOK(w, s.ws.Watchlist())
}

func (s *Server) handleRemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	if s.ws.RemoveFromWatchlist(ticker) {
		s.wsHub.Publish(EventWatchlistUpdated, s.ws.Watchlist())
	}
	writeOK(w, s.ws.Watchlist())
}

func (s *Server) handleToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	watched := s.ws.ToggleWatchlist(ticker)
	s.wsHub.Publish(EventWatchlistUpdated, s.ws.Watchlist())
	writeOK(w, map[string]interface{}{"ticker": ticker, "watched": watched})
}

// ════════════════════════════════════════════════════════════════════
// Custom universe
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleGetCustomStocks(w http.ResponseWriter, r *http.Request) {
	stocks := s.ws.CustomStocks()
	if stocks == nil {
		stocks = []models.Stock{}
	}
	writeOK(w, stocks)
}

// handleAddCustomStock looks the ticker up and adds the resulting stock.
func (s *Server) handleAddCustomStock(w http.ResponseWriter, r *http.Request) {
	var req TickerRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ticker := normalize(req.Ticker)

	res, err := s.quotes.Lookup(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, datasource.ErrTickerNotFound) {
			writeError(w, http.StatusNotFound, datasource.NotFoundMessage(ticker))
			return
		}
		s.writeDomainError(w, err)
		return
	}
	if res.Stock == nil {
		writeError(w, http.StatusNotFound, datasource.NotFoundMessage(ticker))
		return
	}
	if err := s.ws.AddCustomStock(*res.Stock); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeOK(w, res)
}

func (s *Server) handleRemoveCustomStock(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	if !s.ws.RemoveCustomStock(ticker) {
		writeError(w, http.StatusNotFound, "ticker is not in the custom universe")
		return
	}
	writeOK(w, s.ws.CustomStocks())
}

func (s *Server) handleClearCustomStocks(w http.ResponseWriter, r *http.Request) {
	s.ws.ClearCustomStocks()
	writeOK(w, []models.Stock{})
}

// ════════════════════════════════════════════════════════════════════
// Working set
// ════════════════════════════════════════════════════════════════════

// GenerateRequest is the body of POST /comps/generate.
type GenerateRequest struct {
	Anchor string `json:"anchor" validate:"required,max=16"`
}

func (s *Server) publishWorkingSet(ws models.WorkingSet) {
	s.wsHub.Publish(EventWorkingSetUpdated, ws)
}

func (s *Server) handleGenerateComps(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pool := s.ws.Pool(s.quotes.Universe(r.Context()).Stocks)
	ws, err := s.ws.GenerateWorkingSet(req.Anchor, pool)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.publishWorkingSet(ws)
	writeOK(w, ws)
}

func (s *Server) handleGetWorkingSet(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.ws.WorkingSet())
}

func (s *Server) handleSaveWorkingSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnchorTicker string   `json:"anchor_ticker" validate:"required,max=16"`
		CompTickers  []string `json:"comp_tickers" validate:"max=50,dive,max=16"`
	}
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ws, err := s.ws.SaveWorkingSet(models.WorkingSet{AnchorTicker: req.AnchorTicker, CompTickers: req.CompTickers})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.publishWorkingSet(ws)
	writeOK(w, ws)
}

func (s *Server) handleClearWorkingSet(w http.ResponseWriter, r *http.Request) {
	s.ws.ClearWorkingSet()
	ws := s.ws.WorkingSet()
	s.publishWorkingSet(ws)
	writeOK(w, ws)
}

func (s *Server) handleAddPeer(w http.ResponseWriter, r *http.Request) {
	var req TickerRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ws, err := s.ws.AddPeer(req.Ticker)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.publishWorkingSet(ws)
	writeOK(w, ws)
}

func (s *Server) handleRemovePeer(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	ws, err := s.ws.RemovePeer(ticker)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.publishWorkingSet(ws)
	writeOK(w, ws)
}

// ════════════════════════════════════════════════════════════════════
// Comps table, valuation and export
// ════════════════════════════════════════════════════════════════════

// CompsTableResponse is the loaded comps table with overrides applied.
type CompsTableResponse struct {
	WorkingSet models.WorkingSet     `json:"working_set"`
	Rows       []models.CompsRow     `json:"rows"`
	Median     *models.CompsRow      `json:"median"`
	Valuation  fundamental.Valuation `json:"valuation"`
	Overrides  comps.Overrides       `json:"overrides"`
	Live       bool                  `json:"live"`
	LoadedAt   time.Time             `json:"loaded_at"`
}

func (s *Server) loadTable(r *http.Request) (*workspace.CompsTable, error) {
	if r.URL.Query().Get("refresh") != "1" {
		if t, ok := s.ws.Comps(); ok {
			return t, nil
		}
	}
	return s.ws.LoadComps(r.Context(), s.quotes)
}

func (s *Server) handleCompsTable(w http.ResponseWriter, r *http.Request) {
	table, err := s.loadTable(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	rows := s.ws.EffectiveRows(table.Rows)
	overrides := s.ws.Overrides()
	if overrides == nil {
		overrides = comps.Overrides{}
	}
	writeOK(w, CompsTableResponse{
		WorkingSet: table.WorkingSet,
		Rows:       rows,
		Median:     fundamental.MedianRow(rows),
		Valuation:  fundamental.RelativeValuation(rows, table.WorkingSet.AnchorTicker, table.AnchorPrice),
		Overrides:  overrides,
		Live:       table.Live,
		LoadedAt:   table.LoadedAt,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	table, err := s.loadTable(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := comps.WriteCSV(&buf, s.ws.EffectiveRows(table.Rows)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	name := comps.CSVFilename(table.WorkingSet.AnchorTicker, s.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// OverrideRequest is the body of PUT /comps/overrides/{ticker}.
type OverrideRequest struct {
	Metric models.Multiple `json:"metric" validate:"required"`
	Value  float64         `json:"value" validate:"gte=0"`
}

func (s *Server) handleGetOverrides(w http.ResponseWriter, r *http.Request) {
	o := s.ws.Overrides()
	if o == nil {
		o = comps.Overrides{}
	}
	writeOK(w, o)
}

func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	var req OverrideRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := s.ws.SetOverride(ticker, req.Metric, req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.wsHub.Publish(EventOverridesUpdated, o)
	writeOK(w, o)
}

// handleClearOverrides clears one ticker, or every override when the route
// has no ticker.
func (s *Server) handleClearOverrides(w http.ResponseWriter, r *http.Request) {
	s.ws.ClearOverrides(chi.URLParam(r, "ticker"))
	o := s.ws.Overrides()
	if o == nil {
		o = comps.Overrides{}
	}
	s.wsHub.Publish(EventOverridesUpdated, o)
	writeOK(w, o)
}

// ════════════════════════════════════════════════════════════════════
// Thesis
// ════════════════════════════════════════════════════════════════════

// ThesisRequest is the editable part of a thesis note.
type ThesisRequest struct {
	Bull        string                 `json:"bull" validate:"max=20000"`
	Bear        string                 `json:"bear" validate:"max=20000"`
	Catalysts   string                 `json:"catalysts" validate:"max=20000"`
	Risks       string                 `json:"risks" validate:"max=20000"`
	TargetPrice string                 `json:"target_price" validate:"max=64"`
	Checklist   []models.ChecklistItem `json:"checklist" validate:"max=100"`
}

func (s *Server) handleGetThesis(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	writeOK(w, s.ws.Thesis(ticker))
}

func (s *Server) handleSaveThesis(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	var req ThesisRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := s.ws.SaveThesis(models.ThesisNote{
		Ticker:      ticker,
		Bull:        req.Bull,
		Bear:        req.Bear,
		Catalysts:   req.Catalysts,
		Risks:       req.Risks,
		TargetPrice: req.TargetPrice,
		Checklist:   req.Checklist,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeOK(w, note)
}

func (s *Server) handleToggleChecklist(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	note, err := s.ws.ToggleChecklistItem(ticker, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeOK(w, note)
}

func (s *Server) handleChecklistPhases(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]interface{}{
		"phases": workspace.Phases(),
		"items":  workspace.DefaultChecklist(),
	})
}

// ════════════════════════════════════════════════════════════════════
// Research sets
// ════════════════════════════════════════════════════════════════════

// SaveResearchRequest is the body of POST /research.
type SaveResearchRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// UpdateResearchRequest is the body of PATCH /research/{id}.
type UpdateResearchRequest struct {
	Assumptions string `json:"assumptions" validate:"max=50000"`
}

func (s *Server) handleListResearch(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.ws.ResearchSets())
}

func (s *Server) handleSaveResearch(w http.ResponseWriter, r *http.Request) {
	var req SaveResearchRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	set, err := s.ws.SaveResearchSet(req.Name)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.wsHub.Publish(EventResearchSaved, map[string]string{"id": set.ID, "name": set.Name})
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: set})
}

func (s *Server) handleGetResearch(w http.ResponseWriter, r *http.Request) {
	set, err := s.ws.ResearchSet(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeOK(w, set)
}

func (s *Server) handleUpdateResearch(w http.ResponseWriter, r *http.Request) {
	var req UpdateResearchRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	set, err := s.ws.UpdateAssumptions(chi.URLParam(r, "id"), req.Assumptions)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeOK(w, set)
}

func (s *Server) handleDeleteResearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ws.DeleteResearchSet(id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.wsHub.Publish(EventResearchDeleted, map[string]string{"id": id})
	writeOK(w, map[string]string{"id": id})
}

func (s *Server) handleResearchReport(w http.ResponseWriter, r *http.Request) {
	set, err := s.ws.ResearchSet(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	cfg := report.DefaultReportConfig()
	cfg.Now = s.now
	contentType := "text/html; charset=utf-8"
	if r.URL.Query().Get("format") == string(report.FormatText) {
		cfg.Format = report.FormatText
		contentType = "text/plain; charset=utf-8"
	}

	var buf bytes.Buffer
	val := fundamental.RelativeValuation(set.CompsSnapshot, set.AnchorTicker, set.AnchorPrice)
	if err := report.Render(&buf, &set, val, cfg); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
