package models

import "time"

// WorkingSet is the anchor under study and its ordered peers. CompTickers
// never contains the anchor and never repeats a ticker.
type WorkingSet struct {
	AnchorTicker string   `json:"anchor_ticker"`
	CompTickers  []string `json:"comp_tickers"`
}

// IsEmpty reports whether no anchor has been chosen.
func (w WorkingSet) IsEmpty() bool {
	return w.AnchorTicker == ""
}

// Tickers returns the anchor followed by the peers.
func (w WorkingSet) Tickers() []string {
	if w.IsEmpty() {
		return nil
	}
	out := make([]string, 0, len(w.CompTickers)+1)
	out = append(out, w.AnchorTicker)
	return append(out, w.CompTickers...)
}

// Has reports whether ticker is the anchor or one of the peers.
func (w WorkingSet) Has(ticker string) bool {
	if w.AnchorTicker == ticker {
		return true
	}
	for _, t := range w.CompTickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// Equal compares anchors and peer order.
func (w WorkingSet) Equal(o WorkingSet) bool {
	if w.AnchorTicker != o.AnchorTicker || len(w.CompTickers) != len(o.CompTickers) {
		return false
	}
	for i := range w.CompTickers {
		if w.CompTickers[i] != o.CompTickers[i] {
			return false
		}
	}
	return true
}

// ChecklistItem is one step of the research process.
type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// ChecklistPhase groups checklist items for display.
type ChecklistPhase struct {
	Label string   `json:"label"`
	IDs   []string `json:"ids"`
}

// ThesisNote is the qualitative thesis for one ticker.
type ThesisNote struct {
	Ticker      string          `json:"ticker"`
	Bull        string          `json:"bull"`
	Bear        string          `json:"bear"`
	Catalysts   string          `json:"catalysts"`
	Risks       string          `json:"risks"`
	TargetPrice string          `json:"target_price"`
	Checklist   []ChecklistItem `json:"checklist"`
}

// DoneCount returns how many checklist items are complete.
func (n ThesisNote) DoneCount() int {
	c := 0
	for _, it := range n.Checklist {
		if it.Done {
			c++
		}
	}
	return c
}

// ResearchSet is an immutable snapshot of a comps analysis. Only
// Assumptions may change after creation.
type ResearchSet struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	CreatedAt     time.Time   `json:"created_at"`
	AnchorTicker  string      `json:"anchor_ticker"`
	AnchorPrice   float64     `json:"anchor_price"`
	CompTickers   []string    `json:"comp_tickers"`
	CompsSnapshot []CompsRow  `json:"comps_snapshot"`
	Thesis        *ThesisNote `json:"thesis"`
	Assumptions   string      `json:"assumptions"`
}
