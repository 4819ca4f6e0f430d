// Package workspace owns the analyst's session state: watchlist, custom
// universe additions, the comps working set and its overrides, thesis notes
// and saved research sets. State lives in memory behind a mutex and is
// written through to the storage adapter on every change.
package workspace

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/seenimoa/researchdesk/internal/comps"
	"github.com/seenimoa/researchdesk/internal/storage"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

var (
	ErrEmptyPool            = errors.New("workspace: stock pool is empty")
	ErrAnchorNotInPool      = errors.New("workspace: anchor is not in the stock pool")
	ErrNoWorkingSet         = errors.New("workspace: no working set")
	ErrDuplicatePeer        = errors.New("workspace: ticker already in working set")
	ErrPeerNotFound         = errors.New("workspace: ticker is not a peer")
	ErrStale                = errors.New("workspace: working set changed while loading comps")
	ErrNameRequired         = errors.New("workspace: research set name is required")
	ErrResearchSetNotFound  = errors.New("workspace: research set not found")
	ErrUnknownChecklistItem = errors.New("workspace: unknown checklist item")
	ErrInvalidTicker        = errors.New("workspace: invalid ticker")
)

// Workspace is safe for concurrent use.
type Workspace struct {
	mu     sync.RWMutex
	store  *storage.Store
	logger arbor.ILogger
	now    func() time.Time
	newID  func() (string, error)

	watchlist  []string
	custom     []models.Stock
	working    models.WorkingSet
	generation uint64
	overrides  comps.Overrides
	table      *CompsTable
	theses     map[string]models.ThesisNote
	sets       []models.ResearchSet
}

// New loads persisted state from store. A nil store gives a purely
// in-memory workspace.
func New(store *storage.Store, logger arbor.ILogger) *Workspace {
	w := &Workspace{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  newResearchSetID,
		theses: make(map[string]models.ThesisNote),
	}
	w.watchlist = storage.Get[[]string](store, storage.KeyWatchlist, nil)
	w.custom = storage.Get[[]models.Stock](store, storage.KeyCustomStocks, nil)
	w.working = storage.Get(store, storage.KeyWorkingSet, models.WorkingSet{})
	w.overrides = storage.Get[comps.Overrides](store, storage.KeyCompsOverrides, nil)
	w.sets = storage.Get[[]models.ResearchSet](store, storage.KeyResearchSets, nil)
	return w
}

func newResearchSetID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Generation increases on every working-set change.
func (w *Workspace) Generation() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.generation
}

// ── Watchlist ──

// Watchlist returns the watched tickers in insertion order.
func (w *Workspace) Watchlist() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.watchlist)
}

// IsWatchlisted reports whether ticker is watched.
func (w *Workspace) IsWatchlisted(ticker string) bool {
	t := utils.NormalizeTicker(ticker)
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Contains(w.watchlist, t)
}

// AddToWatchlist reports whether ticker was added.
func (w *Workspace) AddToWatchlist(ticker string) bool {
	t := utils.NormalizeTicker(ticker)
	if t == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if slices.Contains(w.watchlist, t) {
		return false
	}
	w.watchlist = append(slices.Clone(w.watchlist), t)
	storage.Set(w.store, storage.KeyWatchlist, w.watchlist)
	return true
}

// RemoveFromWatchlist reports whether ticker was removed.
func (w *Workspace) RemoveFromWatchlist(ticker string) bool {
	t := utils.NormalizeTicker(ticker)
	w.mu.Lock()
	defer w.mu.Unlock()
	i := slices.Index(w.watchlist, t)
	if i < 0 {
		return false
	}
	w.watchlist = slices.Delete(slices.Clone(w.watchlist), i, i+1)
	storage.Set(w.store, storage.KeyWatchlist, w.watchlist)
	return true
}

// ToggleWatchlist flips membership and reports whether ticker is now watched.
func (w *Workspace) ToggleWatchlist(ticker string) bool {
	t := utils.NormalizeTicker(ticker)
	if t == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	watched := true
	if i := slices.Index(w.watchlist, t); i >= 0 {
		w.watchlist = slices.Delete(slices.Clone(w.watchlist), i, i+1)
		watched = false
	} else {
		w.watchlist = append(slices.Clone(w.watchlist), t)
	}
	storage.Set(w.store, storage.KeyWatchlist, w.watchlist)
	return watched
}

// ── Custom stocks ──

// CustomStocks returns stocks the analyst added outside the fixed universe.
func (w *Workspace) CustomStocks() []models.Stock {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.custom)
}

// AddCustomStock appends s unless its ticker is already present.
func (w *Workspace) AddCustomStock(s models.Stock) error {
	s.Ticker = utils.NormalizeTicker(s.Ticker)
	if !utils.IsValidTicker(s.Ticker) {
		return ErrInvalidTicker
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.custom {
		if c.Ticker == s.Ticker {
			return nil
		}
	}
	s.IsWatchlisted = false
	w.custom = append(slices.Clone(w.custom), s)
	storage.Set(w.store, storage.KeyCustomStocks, w.custom)
	return nil
}

// RemoveCustomStock reports whether ticker was removed.
func (w *Workspace) RemoveCustomStock(ticker string) bool {
	t := utils.NormalizeTicker(ticker)
	w.mu.Lock()
	defer w.mu.Unlock()
	i := slices.IndexFunc(w.custom, func(s models.Stock) bool { return s.Ticker == t })
	if i < 0 {
		return false
	}
	w.custom = slices.Delete(slices.Clone(w.custom), i, i+1)
	storage.Set(w.store, storage.KeyCustomStocks, w.custom)
	return true
}

// ClearCustomStocks drops every custom stock.
func (w *Workspace) ClearCustomStocks() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.custom = nil
	storage.Remove(w.store, storage.KeyCustomStocks)
}

// Pool merges universe stocks with custom stocks not already in it. Custom
// entries are appended in insertion order.
func (w *Workspace) Pool(universe []models.Stock) []models.Stock {
	seen := make(map[string]bool, len(universe))
	out := make([]models.Stock, 0, len(universe))
	for _, s := range universe {
		seen[s.Ticker] = true
		out = append(out, s)
	}
	for _, c := range w.CustomStocks() {
		if !seen[c.Ticker] {
			seen[c.Ticker] = true
			out = append(out, c)
		}
	}
	return out
}
