// Package api provides the HTTP REST API server for researchdesk.
//
// It exposes the quote lookups, screener, comps working set, relative
// valuation, thesis notes and research sets, plus a WebSocket event feed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/workspace"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// QuoteSource is the quote lookup service the handlers read from.
type QuoteSource interface {
	Lookup(ctx context.Context, ticker string) (*models.QuoteResult, error)
	LookupMany(ctx context.Context, tickers []string) []*models.QuoteResult
	Universe(ctx context.Context) *models.UniverseResult
}

// NewsSource returns headlines for a ticker.
type NewsSource interface {
	Headlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error)
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	quotes   QuoteSource
	news     NewsSource
	ws       *workspace.Workspace
	wsHub    *WSHub
	logger   arbor.ILogger
	validate *validator.Validate
	started  time.Time
	now      func() time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, quotes QuoteSource, news NewsSource, ws *workspace.Workspace, logger arbor.ILogger) *Server {
	srv := &Server{
		cfg:      cfg,
		quotes:   quotes,
		news:     news,
		ws:       ws,
		wsHub:    NewWSHub(logger),
		logger:   logger,
		validate: validator.New(),
		started:  time.Now(),
		now:      time.Now,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub so other components can publish events.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe runs the HTTP server until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	sc := s.cfg.Server
	httpSrv := &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  seconds(sc.ReadTimeoutSec, 15),
		WriteTimeout: seconds(sc.WriteTimeoutSec, 60),
		IdleTimeout:  seconds(sc.IdleTimeoutSec, 120),
	}

	go s.wsHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", sc.Addr()).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

// corsOptions allows any origin without credentials unless explicit
// origins are configured.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}
	if len(origins) > 0 && !slices.Contains(origins, "*") {
		opts.AllowedOrigins = origins
		opts.AllowCredentials = true
	}
	return opts
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(corsOptions(s.cfg.Server.CORSOrigins)))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Market data
		r.Get("/quote/{ticker}", s.handleQuote)
		r.Get("/quotes", s.handleQuotes)
		r.Get("/news/{ticker}", s.handleNews)
		r.Get("/news/{ticker}/tone", s.handleNewsTone)
		r.Post("/screen", s.handleScreen)

		// Watchlist
		r.Get("/watchlist", s.handleGetWatchlist)
		r.Post("/watchlist", s.handleAddWatchlist)
		r.Delete("/watchlist/{ticker}", s.handleRemoveWatchlist)
		r.Put("/watchlist/{ticker}/toggle", s.handleToggleWatchlist)

		// Custom universe
		r.Get("/universe", s.handleGetCustomStocks)
		r.Post("/universe", s.handleAddCustomStock)
		r.Delete("/universe", s.handleClearCustomStocks)
		r.Delete("/universe/{ticker}", s.handleRemoveCustomStock)

		// Comps
		r.Route("/comps", func(r chi.Router) {
			r.Post("/generate", s.handleGenerateComps)
			r.Get("/working-set", s.handleGetWorkingSet)
			r.Put("/working-set", s.handleSaveWorkingSet)
			r.Delete("/working-set", s.handleClearWorkingSet)
			r.Post("/peers", s.handleAddPeer)
			r.Delete("/peers/{ticker}", s.handleRemovePeer)
			r.Get("/table", s.handleCompsTable)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/overrides", s.handleGetOverrides)
			r.Delete("/overrides", s.handleClearOverrides)
			r.Put("/overrides/{ticker}", s.handleSetOverride)
			r.Delete("/overrides/{ticker}", s.handleClearOverrides)
		})

		// Thesis
		r.Get("/thesis/{ticker}", s.handleGetThesis)
		r.Put("/thesis/{ticker}", s.handleSaveThesis)
		r.Post("/thesis/{ticker}/checklist/{id}/toggle", s.handleToggleChecklist)
		r.Get("/checklist/phases", s.handleChecklistPhases)

		// Research sets
		r.Get("/research", s.handleListResearch)
		r.Post("/research", s.handleSaveResearch)
		r.Get("/research/{id}", s.handleGetResearch)
		r.Patch("/research/{id}", s.handleUpdateResearch)
		r.Delete("/research/{id}", s.handleDeleteResearch)
		r.Get("/research/{id}/report", s.handleResearchReport)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// requestLogger logs every request through arbor once it completes.
func requestLogger(logger arbor.ILogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Response envelope
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard API response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{Success: false, Error: msg})
}

// writeDomainError maps package errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workspace.ErrResearchSetNotFound),
		errors.Is(err, workspace.ErrPeerNotFound),
		errors.Is(err, workspace.ErrUnknownChecklistItem),
		errors.Is(err, datasource.ErrTickerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workspace.ErrStale),
		errors.Is(err, workspace.ErrDuplicatePeer):
		status = http.StatusConflict
	case errors.Is(err, workspace.ErrNameRequired),
		errors.Is(err, workspace.ErrInvalidTicker),
		errors.Is(err, workspace.ErrNoWorkingSet),
		errors.Is(err, workspace.ErrAnchorNotInPool),
		errors.Is(err, workspace.ErrEmptyPool):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

// decodeBody decodes a JSON body into v and runs struct validation.
func (s *Server) decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("validation: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Health
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]interface{}{
		"status":     "ok",
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"ws_clients": s.wsHub.ClientCount(),
	})
}
