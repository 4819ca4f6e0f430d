package workspace

import (
	"slices"
	"strings"

	"github.com/seenimoa/researchdesk/internal/storage"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

var defaultChecklist = []models.ChecklistItem{
	{ID: "ctx-1", Label: "Market cycle analysis"},
	{ID: "ctx-2", Label: "Macro environment review"},
	{ID: "ctx-3", Label: "Sector overview"},
	{ID: "pos-1", Label: "Define comp group"},
	{ID: "pos-2", Label: "Select anchor stock"},
	{ID: "pos-3", Label: "Identify competitive positioning"},
	{ID: "fin-1", Label: "Income statement analysis"},
	{ID: "fin-2", Label: "Balance sheet analysis"},
	{ID: "fin-3", Label: "Cash flow statement analysis"},
	{ID: "val-1", Label: "Forecast revenue and margins"},
	{ID: "val-2", Label: "Build DCF model"},
	{ID: "val-3", Label: "Cross-check with comps"},
	{ID: "val-4", Label: "Sensitivity analysis"},
	{ID: "con-1", Label: "Target price"},
	{ID: "con-2", Label: "Risk/reward summary"},
	{ID: "con-3", Label: "Final investment report"},
}

var checklistPhases = []models.ChecklistPhase{
	{Label: "Context", IDs: []string{"ctx-1", "ctx-2", "ctx-3"}},
	{Label: "Positioning", IDs: []string{"pos-1", "pos-2", "pos-3"}},
	{Label: "Financial Foundation", IDs: []string{"fin-1", "fin-2", "fin-3"}},
	{Label: "Valuation", IDs: []string{"val-1", "val-2", "val-3", "val-4"}},
	{Label: "Conclusion", IDs: []string{"con-1", "con-2", "con-3"}},
}

// DefaultChecklist returns a fresh copy of the canonical checklist, all
// items open.
func DefaultChecklist() []models.ChecklistItem {
	return slices.Clone(defaultChecklist)
}

// Phases returns the display grouping of the canonical checklist.
func Phases() []models.ChecklistPhase {
	out := make([]models.ChecklistPhase, len(checklistPhases))
	for i, p := range checklistPhases {
		out[i] = models.ChecklistPhase{Label: p.Label, IDs: slices.Clone(p.IDs)}
	}
	return out
}

// MergeChecklist reconciles a stored checklist with the canonical one.
// A checklist written before item ids were named (every id numeric) is
// replaced by a copy of canonical. Otherwise the stored items are kept as
// they are and canonical items missing from them are appended in canonical
// order.
func MergeChecklist(canonical, stored []models.ChecklistItem) []models.ChecklistItem {
	if len(stored) == 0 || isLegacyChecklist(stored) {
		return slices.Clone(canonical)
	}
	have := make(map[string]bool, len(stored))
	out := make([]models.ChecklistItem, 0, len(stored)+len(canonical))
	for _, it := range stored {
		have[it.ID] = true
		out = append(out, it)
	}
	for _, it := range canonical {
		if !have[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

func isLegacyChecklist(items []models.ChecklistItem) bool {
	for _, it := range items {
		if it.ID == "" || strings.TrimLeft(it.ID, "0123456789") != "" {
			return false
		}
	}
	return true
}

// Thesis returns the note for ticker with its checklist reconciled. A
// ticker without a saved note gets an empty note and the default checklist.
func (w *Workspace) Thesis(ticker string) models.ThesisNote {
	t := utils.NormalizeTicker(ticker)
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneThesis(w.thesisLocked(t))
}

// HasThesis reports whether a note was ever saved for ticker.
func (w *Workspace) HasThesis(ticker string) bool {
	t := utils.NormalizeTicker(ticker)
	w.mu.RLock()
	_, ok := w.theses[t]
	w.mu.RUnlock()
	if ok {
		return true
	}
	return slices.Contains(w.store.Keys(storage.ThesisKey(t)), storage.ThesisKey(t))
}

// ThesisTickers lists tickers with a saved note, sorted.
func (w *Workspace) ThesisTickers() []string {
	seen := map[string]bool{}
	for _, k := range w.store.Keys(storage.ThesisKey("")) {
		if t, ok := storage.ThesisTicker(k); ok {
			seen[t] = true
		}
	}
	w.mu.RLock()
	for t := range w.theses {
		seen[t] = true
	}
	w.mu.RUnlock()
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func (w *Workspace) thesisLocked(t string) models.ThesisNote {
	if n, ok := w.theses[t]; ok {
		return n
	}
	n := storage.Get(w.store, storage.ThesisKey(t), models.ThesisNote{})
	n.Ticker = t
	n.Checklist = MergeChecklist(defaultChecklist, n.Checklist)
	return n
}

// SaveThesis stores note under its ticker and returns the stored copy.
func (w *Workspace) SaveThesis(note models.ThesisNote) (models.ThesisNote, error) {
	note.Ticker = utils.NormalizeTicker(note.Ticker)
	if note.Ticker == "" {
		return models.ThesisNote{}, ErrInvalidTicker
	}
	note.Checklist = MergeChecklist(defaultChecklist, note.Checklist)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.putThesisLocked(note)
	return cloneThesis(note), nil
}

func (w *Workspace) putThesisLocked(note models.ThesisNote) {
	w.theses[note.Ticker] = cloneThesis(note)
	storage.Set(w.store, storage.ThesisKey(note.Ticker), note)
}

// ToggleChecklistItem flips one item of ticker's checklist.
func (w *Workspace) ToggleChecklistItem(ticker, itemID string) (models.ThesisNote, error) {
	t := utils.NormalizeTicker(ticker)
	w.mu.Lock()
	defer w.mu.Unlock()

	note := cloneThesis(w.thesisLocked(t))
	i := slices.IndexFunc(note.Checklist, func(it models.ChecklistItem) bool { return it.ID == itemID })
	if i < 0 {
		return models.ThesisNote{}, ErrUnknownChecklistItem
	}
	note.Checklist[i].Done = !note.Checklist[i].Done
	w.putThesisLocked(note)
	return cloneThesis(note), nil
}

func cloneThesis(n models.ThesisNote) models.ThesisNote {
	n.Checklist = slices.Clone(n.Checklist)
	return n
}
