// Package screener filters and orders the stock universe for display.
// Everything here is pure: inputs are never modified.
package screener

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// CapBucket is a market-cap band, in billions.
type CapBucket string

const (
	CapAll   CapBucket = "all"
	CapMega  CapBucket = "mega"  // > 200
	CapLarge CapBucket = "large" // 10 .. 200 inclusive
	CapMid   CapBucket = "mid"   // 2 <= x < 10
	CapSmall CapBucket = "small" // 0 < x < 2
)

// SortKey is a sortable column.
type SortKey string

const (
	SortTicker    SortKey = "ticker"
	SortPrice     SortKey = "price"
	SortChange1D  SortKey = "change_1d"
	SortMarketCap SortKey = "market_cap"
	SortPERatio   SortKey = "pe_ratio"
	SortPBRatio   SortKey = "pb_ratio"
)

// SortDir is the sort direction.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// AllSectors disables the sector filter.
const AllSectors = "all"

// Filters is the screener state. Zero fields take their defaults.
type Filters struct {
	Search         string    `json:"search"`
	Sector         string    `json:"sector"`
	MarketCap      CapBucket `json:"market_cap"`
	SortBy         SortKey   `json:"sort_by"`
	SortDir        SortDir   `json:"sort_dir"`
	ShowIncomplete bool      `json:"show_incomplete"`
}

// DefaultFilters returns the initial screener state: everything, largest
// first.
func DefaultFilters() Filters {
	return Filters{
		Sector:    AllSectors,
		MarketCap: CapAll,
		SortBy:    SortMarketCap,
		SortDir:   Desc,
	}
}

// withDefaults fills empty fields.
func (f Filters) withDefaults() Filters {
	d := DefaultFilters()
	if f.Sector == "" {
		f.Sector = d.Sector
	}
	if f.MarketCap == "" {
		f.MarketCap = d.MarketCap
	}
	if f.SortBy == "" {
		f.SortBy = d.SortBy
	}
	if f.SortDir == "" {
		f.SortDir = d.SortDir
	}
	return f
}

// Validate rejects unknown enumeration values.
func (f Filters) Validate() error {
	f = f.withDefaults()
	switch f.MarketCap {
	case CapAll, CapMega, CapLarge, CapMid, CapSmall:
	default:
		return fmt.Errorf("unknown market cap bucket %q", f.MarketCap)
	}
	switch f.SortBy {
	case SortTicker, SortPrice, SortChange1D, SortMarketCap, SortPERatio, SortPBRatio:
	default:
		return fmt.Errorf("unknown sort key %q", f.SortBy)
	}
	switch f.SortDir {
	case Asc, Desc:
	default:
		return fmt.Errorf("unknown sort direction %q", f.SortDir)
	}
	return nil
}

// InBucket reports whether a market cap (in billions) falls in bucket b.
func InBucket(marketCap float64, b CapBucket) bool {
	switch b {
	case CapMega:
		return marketCap > 200
	case CapLarge:
		return marketCap >= 10 && marketCap <= 200
	case CapMid:
		return marketCap >= 2 && marketCap < 10
	case CapSmall:
		return marketCap > 0 && marketCap < 2
	default:
		return true
	}
}

// Apply returns the rows of stocks that pass every filter, ordered by the
// sort key, with IsWatchlisted recomputed from watchlist.
func Apply(stocks []models.Stock, f Filters, watchlist []string) []models.Stock {
	f = f.withDefaults()

	watched := make(map[string]bool, len(watchlist))
	for _, t := range watchlist {
		watched[t] = true
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Stock, 0, len(stocks))
	for _, s := range stocks {
		s.IsWatchlisted = watched[s.Ticker]
		if !f.ShowIncomplete && !s.IsComplete() {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Ticker), search) &&
			!strings.Contains(strings.ToLower(s.Name), search) {
			continue
		}
		if f.Sector != AllSectors && s.Sector != f.Sector {
			continue
		}
		if !InBucket(s.MarketCap, f.MarketCap) {
			continue
		}
		out = append(out, s)
	}

	sortStocks(out, f.SortBy, f.SortDir)
	return out
}

func sortStocks(rows []models.Stock, key SortKey, dir SortDir) {
	var cmp func(a, b models.Stock) int
	if key == SortTicker {
		col := collate.New(language.English)
		cmp = func(a, b models.Stock) int { return col.CompareString(a.Ticker, b.Ticker) }
	} else {
		get := numericKey(key)
		cmp = func(a, b models.Stock) int {
			x, y := get(a), get(b)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if dir == Desc {
		asc := cmp
		cmp = func(a, b models.Stock) int { return -asc(a, b) }
	}
	slices.SortStableFunc(rows, cmp)
}

func numericKey(key SortKey) func(models.Stock) float64 {
	switch key {
	case SortPrice:
		return func(s models.Stock) float64 { return s.Price }
	case SortChange1D:
		return func(s models.Stock) float64 { return s.Change1D }
	case SortPERatio:
		return func(s models.Stock) float64 { return s.PERatio }
	case SortPBRatio:
		return func(s models.Stock) float64 { return s.PBRatio }
	default:
		return func(s models.Stock) float64 { return s.MarketCap }
	}
}

// Sectors lists the distinct sectors present in stocks, collated.
func Sectors(stocks []models.Stock) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range stocks {
		if s.Sector != "" && !seen[s.Sector] {
			seen[s.Sector] = true
			out = append(out, s.Sector)
		}
	}
	collate.New(language.English).SortStrings(out)
	return out
}

// CompleteCount returns how many stocks carry price and market cap.
func CompleteCount(stocks []models.Stock) int {
	n := 0
	for _, s := range stocks {
		if s.IsComplete() {
			n++
		}
	}
	return n
}
