// Package models defines the core data structures used throughout researchdesk.
package models

import "time"

// Stock is one screener row: identity, last price and headline multiples.
// Money fields are in billions of the listing currency, percentages are
// already scaled (1.5 means 1.5 %).
type Stock struct {
	Ticker           string  `json:"ticker"`             // e.g., "AAPL"
	Name             string  `json:"name"`               // e.g., "Apple Inc."
	Sector           string  `json:"sector"`             // e.g., "Technology"
	Price            float64 `json:"price"`              // last trade
	Change1D         float64 `json:"change_1d"`          // percent
	MarketCap        float64 `json:"market_cap"`         // $B
	PERatio          float64 `json:"pe_ratio"`           // trailing
	PBRatio          float64 `json:"pb_ratio"`           // price / book
	EVEbitda         float64 `json:"ev_ebitda"`          // enterprise value / EBITDA
	RevenueGrowthYoY float64 `json:"revenue_growth_yoy"` // percent
	EBITDAMargin     float64 `json:"ebitda_margin"`      // percent
	IsWatchlisted    bool    `json:"is_watchlisted"`
}

// IsComplete reports whether the row carries a usable price and market cap.
func (s Stock) IsComplete() bool {
	return s.Price > 0 && s.MarketCap > 0
}

// CompsRow is one line of the comparable-companies table.
type CompsRow struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	MarketCap float64 `json:"market_cap"` // $B
	EV        float64 `json:"ev"`         // $B
	Revenue   float64 `json:"revenue"`    // $B, trailing twelve months
	EBITDA    float64 `json:"ebitda"`     // $B
	PERatio   float64 `json:"pe_ratio"`
	EVEbitda  float64 `json:"ev_ebitda"`
	EVRevenue float64 `json:"ev_revenue"`
}

// Multiple names one of the overridable valuation multiples.
type Multiple string

const (
	MultiplePE        Multiple = "pe_ratio"
	MultipleEVEbitda  Multiple = "ev_ebitda"
	MultipleEVRevenue Multiple = "ev_revenue"
)

// Multiples lists every overridable multiple in display order.
var Multiples = []Multiple{MultiplePE, MultipleEVEbitda, MultipleEVRevenue}

// Valid reports whether m names a known multiple.
func (m Multiple) Valid() bool {
	switch m {
	case MultiplePE, MultipleEVEbitda, MultipleEVRevenue:
		return true
	}
	return false
}

// Value returns the row's value for multiple m.
func (r CompsRow) Value(m Multiple) float64 {
	switch m {
	case MultiplePE:
		return r.PERatio
	case MultipleEVEbitda:
		return r.EVEbitda
	case MultipleEVRevenue:
		return r.EVRevenue
	}
	return 0
}

// MultipleOverrides holds user-entered replacements for a ticker's fetched
// multiples. A zero field is not overridden.
type MultipleOverrides struct {
	PERatio   float64 `json:"pe_ratio,omitempty"`
	EVEbitda  float64 `json:"ev_ebitda,omitempty"`
	EVRevenue float64 `json:"ev_revenue,omitempty"`
}

// IsEmpty reports whether no multiple is overridden.
func (o MultipleOverrides) IsEmpty() bool {
	return o.PERatio == 0 && o.EVEbitda == 0 && o.EVRevenue == 0
}

// QuoteResult is the outcome of a single-ticker lookup. Live is false when
// the data came from the local fallback records.
type QuoteResult struct {
	Stock    *Stock    `json:"stock"`
	CompsRow *CompsRow `json:"comps_row"`
	Live     bool      `json:"live"`
}

// UniverseResult is the batch quote over the fixed universe.
type UniverseResult struct {
	Stocks    []Stock   `json:"stocks"`
	Live      bool      `json:"live"`
	Total     int       `json:"total"`
	FetchedAt time.Time `json:"fetched_at"`
}

// UniverseEntry is a static identity record of the fixed universe.
type UniverseEntry struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// NewsArticle is a headline from the provider's per-ticker feed.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Tone        string    `json:"tone,omitempty"` // positive, negative or neutral
	ToneScore   float64   `json:"tone_score"`
}
