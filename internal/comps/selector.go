// Package comps builds and edits the comparable-companies working set and
// exports the comps table.
package comps

import (
	"fmt"
	"math"
	"slices"

	"github.com/seenimoa/researchdesk/pkg/models"
)

const (
	// MaxSectorPeers caps how many same-sector peers are taken.
	MaxSectorPeers = 7
	// MinPeers is the size the selection is topped up to from other sectors.
	MinPeers = 6
)

// Contains reports whether pool holds ticker.
func Contains(pool []models.Stock, ticker string) bool {
	return slices.ContainsFunc(pool, func(s models.Stock) bool { return s.Ticker == ticker })
}

// Select picks peers for anchor from pool: the same-sector names closest in
// market cap, topped up from the whole pool when the sector is thin. Rows
// with no market cap are never chosen. The anchor must be in pool; Select
// panics otherwise, so callers check with Contains first.
func Select(anchor string, pool []models.Stock) models.WorkingSet {
	i := slices.IndexFunc(pool, func(s models.Stock) bool { return s.Ticker == anchor })
	if i < 0 {
		panic(fmt.Sprintf("comps: anchor %q not in pool", anchor))
	}
	a := pool[i]

	used := map[string]bool{anchor: true}
	sameSector := candidates(pool, used, a, func(s models.Stock) bool { return s.Sector == a.Sector })
	if len(sameSector) > MaxSectorPeers {
		sameSector = sameSector[:MaxSectorPeers]
	}

	peers := make([]string, 0, MaxSectorPeers)
	for _, s := range sameSector {
		peers = append(peers, s.Ticker)
		used[s.Ticker] = true
	}

	if len(peers) < MinPeers {
		fill := candidates(pool, used, a, func(models.Stock) bool { return true })
		for _, s := range fill {
			if len(peers) >= MinPeers {
				break
			}
			peers = append(peers, s.Ticker)
			used[s.Ticker] = true
		}
	}

	return models.WorkingSet{AnchorTicker: anchor, CompTickers: peers}
}

// candidates returns pool rows passing keep that are unused and have a
// market cap, ordered by distance from the anchor's cap. Ties keep pool
// order.
func candidates(pool []models.Stock, used map[string]bool, anchor models.Stock, keep func(models.Stock) bool) []models.Stock {
	var out []models.Stock
	seen := make(map[string]bool)
	for _, s := range pool {
		if used[s.Ticker] || seen[s.Ticker] || s.MarketCap <= 0 || !keep(s) {
			continue
		}
		seen[s.Ticker] = true
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(x, y models.Stock) int {
		dx := math.Abs(x.MarketCap - anchor.MarketCap)
		dy := math.Abs(y.MarketCap - anchor.MarketCap)
		switch {
		case dx < dy:
			return -1
		case dx > dy:
			return 1
		}
		return 0
	})
	return out
}

// AddPeer appends ticker to the working set. The anchor and tickers already
// present are ignored; the boolean reports whether the set changed.
func AddPeer(ws models.WorkingSet, ticker string) (models.WorkingSet, bool) {
	if ticker == "" || ws.Has(ticker) {
		return ws, false
	}
	out := models.WorkingSet{
		AnchorTicker: ws.AnchorTicker,
		CompTickers:  append(slices.Clone(ws.CompTickers), ticker),
	}
	return out, true
}

// RemovePeer drops ticker from the peers. Removing the anchor is not
// possible through this call.
func RemovePeer(ws models.WorkingSet, ticker string) (models.WorkingSet, bool) {
	i := slices.Index(ws.CompTickers, ticker)
	if i < 0 {
		return ws, false
	}
	out := models.WorkingSet{
		AnchorTicker: ws.AnchorTicker,
		CompTickers:  slices.Delete(slices.Clone(ws.CompTickers), i, i+1),
	}
	return out, true
}
