package workspace

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/seenimoa/researchdesk/internal/comps"
	"github.com/seenimoa/researchdesk/internal/storage"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

// QuoteFetcher resolves tickers concurrently; failed lookups leave nil
// slots aligned with tickers.
type QuoteFetcher interface {
	LookupMany(ctx context.Context, tickers []string) []*models.QuoteResult
}

// CompsTable is the comps rows loaded for one working set.
type CompsTable struct {
	WorkingSet  models.WorkingSet `json:"working_set"`
	Rows        []models.CompsRow `json:"rows"`
	AnchorPrice float64           `json:"anchor_price"`
	Live        bool              `json:"live"`
	LoadedAt    time.Time         `json:"loaded_at"`
	generation  uint64
}

func (t *CompsTable) clone() *CompsTable {
	c := *t
	c.WorkingSet.CompTickers = slices.Clone(t.WorkingSet.CompTickers)
	c.Rows = slices.Clone(t.Rows)
	return &c
}

// WorkingSet returns the current anchor and peers.
func (w *Workspace) WorkingSet() models.WorkingSet {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneWorkingSet(w.working)
}

func cloneWorkingSet(ws models.WorkingSet) models.WorkingSet {
	return models.WorkingSet{AnchorTicker: ws.AnchorTicker, CompTickers: slices.Clone(ws.CompTickers)}
}

// setWorkingSet must be called with the lock held.
func (w *Workspace) setWorkingSet(ws models.WorkingSet) {
	w.working = ws
	w.generation++
	if ws.IsEmpty() {
		storage.Remove(w.store, storage.KeyWorkingSet)
		return
	}
	storage.Set(w.store, storage.KeyWorkingSet, ws)
}

// GenerateWorkingSet picks peers for anchor from pool and makes them the
// current working set.
func (w *Workspace) GenerateWorkingSet(anchor string, pool []models.Stock) (models.WorkingSet, error) {
	anchor = utils.NormalizeTicker(anchor)
	if len(pool) == 0 {
		return models.WorkingSet{}, ErrEmptyPool
	}
	if !comps.Contains(pool, anchor) {
		return models.WorkingSet{}, ErrAnchorNotInPool
	}
	ws := comps.Select(anchor, pool)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setWorkingSet(ws)
	return cloneWorkingSet(ws), nil
}

// SaveWorkingSet replaces the working set. Peers are normalized; the anchor
// and repeated tickers are dropped from them.
func (w *Workspace) SaveWorkingSet(ws models.WorkingSet) (models.WorkingSet, error) {
	anchor := utils.NormalizeTicker(ws.AnchorTicker)
	if anchor == "" {
		return models.WorkingSet{}, ErrNoWorkingSet
	}
	clean := models.WorkingSet{AnchorTicker: anchor, CompTickers: []string{}}
	for _, t := range ws.CompTickers {
		clean, _ = comps.AddPeer(clean, utils.NormalizeTicker(t))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setWorkingSet(clean)
	return cloneWorkingSet(clean), nil
}

// ClearWorkingSet drops the working set and its loaded table.
func (w *Workspace) ClearWorkingSet() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setWorkingSet(models.WorkingSet{})
	w.table = nil
}

// AddPeer appends ticker to the peers.
func (w *Workspace) AddPeer(ticker string) (models.WorkingSet, error) {
	t := utils.NormalizeTicker(ticker)
	if !utils.IsValidTicker(t) {
		return models.WorkingSet{}, ErrInvalidTicker
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.working.IsEmpty() {
		return models.WorkingSet{}, ErrNoWorkingSet
	}
	ws, changed := comps.AddPeer(w.working, t)
	if !changed {
		return cloneWorkingSet(w.working), ErrDuplicatePeer
	}
	w.setWorkingSet(ws)
	return cloneWorkingSet(ws), nil
}

// RemovePeer drops ticker from the peers.
func (w *Workspace) RemovePeer(ticker string) (models.WorkingSet, error) {
	t := utils.NormalizeTicker(ticker)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.working.IsEmpty() {
		return models.WorkingSet{}, ErrNoWorkingSet
	}
	ws, changed := comps.RemovePeer(w.working, t)
	if !changed {
		return cloneWorkingSet(w.working), ErrPeerNotFound
	}
	w.setWorkingSet(ws)
	return cloneWorkingSet(ws), nil
}

// LoadComps fetches the anchor and every peer together and waits for all
// of them. Failed lookups are dropped. When the working set changes while
// the fetches are in flight the result is discarded and ErrStale returned.
func (w *Workspace) LoadComps(ctx context.Context, fetcher QuoteFetcher) (*CompsTable, error) {
	w.mu.RLock()
	ws := cloneWorkingSet(w.working)
	gen := w.generation
	w.mu.RUnlock()

	if ws.IsEmpty() {
		return nil, ErrNoWorkingSet
	}

	results := fetcher.LookupMany(ctx, ws.Tickers())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := &CompsTable{
		WorkingSet: ws,
		Rows:       make([]models.CompsRow, 0, len(results)),
		Live:       true,
		generation: gen,
	}
	for i, r := range results {
		if r == nil || r.CompsRow == nil {
			continue
		}
		table.Rows = append(table.Rows, *r.CompsRow)
		table.Live = table.Live && r.Live
		if i == 0 && r.Stock != nil {
			table.AnchorPrice = r.Stock.Price
		}
	}
	if len(table.Rows) == 0 {
		table.Live = false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen {
		if w.logger != nil {
			w.logger.Debug().Str("anchor", ws.AnchorTicker).Msg("discarding stale comps load")
		}
		return nil, ErrStale
	}
	table.LoadedAt = w.now().UTC()
	w.table = table
	return table.clone(), nil
}

// Comps returns the last loaded table when it still matches the working set.
func (w *Workspace) Comps() (*CompsTable, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.table == nil || w.table.generation != w.generation {
		return nil, false
	}
	return w.table.clone(), true
}

// EffectiveRows applies the current overrides to rows.
func (w *Workspace) EffectiveRows(rows []models.CompsRow) []models.CompsRow {
	return comps.Effective(rows, w.Overrides())
}

// ── Overrides ──

// Overrides returns a copy of every ticker's multiple overrides.
func (w *Workspace) Overrides() comps.Overrides {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return maps.Clone(w.overrides)
}

// SetOverride sets metric for ticker; zero clears it.
func (w *Workspace) SetOverride(ticker string, metric models.Multiple, value float64) (comps.Overrides, error) {
	t := utils.NormalizeTicker(ticker)
	if t == "" {
		return nil, ErrInvalidTicker
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	next, err := comps.SetOverride(w.overrides, t, metric, value)
	if err != nil {
		return nil, err
	}
	w.overrides = next
	w.persistOverrides()
	return maps.Clone(next), nil
}

// ClearOverrides drops ticker's overrides, or all of them when ticker is
// empty.
func (w *Workspace) ClearOverrides(ticker string) {
	t := utils.NormalizeTicker(ticker)
	w.mu.Lock()
	defer w.mu.Unlock()
	if t == "" {
		w.overrides = nil
	} else {
		next := maps.Clone(w.overrides)
		delete(next, t)
		w.overrides = next
	}
	w.persistOverrides()
}

func (w *Workspace) persistOverrides() {
	if len(w.overrides) == 0 {
		storage.Remove(w.store, storage.KeyCompsOverrides)
		return
	}
	storage.Set(w.store, storage.KeyCompsOverrides, w.overrides)
}
