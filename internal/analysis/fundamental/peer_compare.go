package fundamental

import (
	"github.com/seenimoa/researchdesk/pkg/models"
)

// MultipleValuation is the anchor-vs-peers reading for one multiple. Nil
// pointers mean the figure is undefined for this table.
type MultipleValuation struct {
	Metric         models.Multiple `json:"metric"`
	AnchorMultiple float64         `json:"anchor_multiple"`
	Median         *float64        `json:"median"`
	PremiumPct     *float64        `json:"premium_pct"`   // (anchor / median - 1) * 100
	ImpliedPrice   *float64        `json:"implied_price"` // price * median / anchor
	UpsidePct      *float64        `json:"upside_pct"`    // (implied / price - 1) * 100
}

// IsPremium reports whether the anchor trades above the median. It is
// false when the premium is undefined.
func (m MultipleValuation) IsPremium() bool {
	return m.PremiumPct != nil && *m.PremiumPct > 0
}

// Valuation is the relative valuation of an anchor against its comps.
type Valuation struct {
	AnchorTicker string            `json:"anchor_ticker"`
	AnchorPrice  float64           `json:"anchor_price"`
	Rows         int               `json:"rows"`
	PE           MultipleValuation `json:"pe"`
	EVEbitda     MultipleValuation `json:"ev_ebitda"`
}

// RelativeValuation values the anchor on P/E and EV/EBITDA against rows,
// which must already carry any user overrides. The median runs over every
// row, the anchor included.
func RelativeValuation(rows []models.CompsRow, anchorTicker string, anchorPrice float64) Valuation {
	return Valuation{
		AnchorTicker: anchorTicker,
		AnchorPrice:  anchorPrice,
		Rows:         len(rows),
		PE:           ValueMultiple(rows, anchorTicker, anchorPrice, models.MultiplePE),
		EVEbitda:     ValueMultiple(rows, anchorTicker, anchorPrice, models.MultipleEVEbitda),
	}
}

// ValueMultiple computes one MultipleValuation. Every output stays nil when
// the table has fewer than two rows, the anchor row is missing or its
// multiple is zero, or the median is zero. Implied price and upside also
// need a positive price.
func ValueMultiple(rows []models.CompsRow, anchorTicker string, price float64, m models.Multiple) MultipleValuation {
	out := MultipleValuation{Metric: m}
	if len(rows) < 2 {
		return out
	}

	med, ok := Median(column(rows, func(r models.CompsRow) float64 { return r.Value(m) }))
	if !ok || med <= 0 {
		return out
	}
	out.Median = &med

	anchor, found := findRow(rows, anchorTicker)
	if !found {
		return out
	}
	am := anchor.Value(m)
	out.AnchorMultiple = am
	if am <= 0 {
		return out
	}

	premium := (am/med - 1) * 100
	out.PremiumPct = &premium

	if price > 0 {
		implied := price * (med / am)
		upside := (implied/price - 1) * 100
		out.ImpliedPrice = &implied
		out.UpsidePct = &upside
	}
	return out
}

// MedianRow returns the column medians of rows, or nil when rows is empty.
// Ticker and name identify it as the median line.
func MedianRow(rows []models.CompsRow) *models.CompsRow {
	if len(rows) == 0 {
		return nil
	}
	med := func(get func(models.CompsRow) float64) float64 {
		v, _ := Median(column(rows, get))
		return v
	}
	return &models.CompsRow{
		Ticker:    "MEDIAN",
		Name:      "Median",
		MarketCap: med(func(r models.CompsRow) float64 { return r.MarketCap }),
		EV:        med(func(r models.CompsRow) float64 { return r.EV }),
		Revenue:   med(func(r models.CompsRow) float64 { return r.Revenue }),
		EBITDA:    med(func(r models.CompsRow) float64 { return r.EBITDA }),
		PERatio:   med(func(r models.CompsRow) float64 { return r.PERatio }),
		EVEbitda:  med(func(r models.CompsRow) float64 { return r.EVEbitda }),
		EVRevenue: med(func(r models.CompsRow) float64 { return r.EVRevenue }),
	}
}

func findRow(rows []models.CompsRow, ticker string) (models.CompsRow, bool) {
	for _, r := range rows {
		if r.Ticker == ticker {
			return r, true
		}
	}
	return models.CompsRow{}, false
}
