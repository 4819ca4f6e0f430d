package comps

import (
	"fmt"
	"maps"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// Overrides maps ticker to the user's multiple replacements.
type Overrides map[string]models.MultipleOverrides

// SetOverride returns a copy of o with metric for ticker set to value. A
// value of zero clears the metric; a ticker left with nothing overridden is
// dropped. Negative values are rejected.
func SetOverride(o Overrides, ticker string, metric models.Multiple, value float64) (Overrides, error) {
	if !metric.Valid() {
		return o, fmt.Errorf("unknown multiple %q", metric)
	}
	if value < 0 {
		return o, fmt.Errorf("multiple %s must not be negative", metric)
	}

	out := maps.Clone(o)
	if out == nil {
		out = Overrides{}
	}
	entry := out[ticker]
	switch metric {
	case models.MultiplePE:
		entry.PERatio = value
	case models.MultipleEVEbitda:
		entry.EVEbitda = value
	case models.MultipleEVRevenue:
		entry.EVRevenue = value
	}

	if entry.IsEmpty() {
		delete(out, ticker)
	} else {
		out[ticker] = entry
	}
	return out, nil
}

// Effective returns copies of rows with overrides applied. Rows without an
// override are returned unchanged.
func Effective(rows []models.CompsRow, o Overrides) []models.CompsRow {
	out := make([]models.CompsRow, len(rows))
	for i, r := range rows {
		if ov, ok := o[r.Ticker]; ok {
			if ov.PERatio > 0 {
				r.PERatio = ov.PERatio
			}
			if ov.EVEbitda > 0 {
				r.EVEbitda = ov.EVEbitda
			}
			if ov.EVRevenue > 0 {
				r.EVRevenue = ov.EVRevenue
			}
		}
		out[i] = r
	}
	return out
}
