package workspace

import (
	"fmt"
	"slices"
	"strings"

	"github.com/seenimoa/researchdesk/internal/comps"
	"github.com/seenimoa/researchdesk/internal/storage"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// ResearchSets returns saved sets, newest first.
func (w *Workspace) ResearchSets() []models.ResearchSet {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]models.ResearchSet, len(w.sets))
	for i, s := range w.sets {
		out[i] = cloneResearchSet(s)
	}
	return out
}

// ResearchSet returns the set with id.
func (w *Workspace) ResearchSet(id string) (models.ResearchSet, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	i := w.indexOf(id)
	if i < 0 {
		return models.ResearchSet{}, ErrResearchSetNotFound
	}
	return cloneResearchSet(w.sets[i]), nil
}

// SaveResearchSet snapshots the working set, the loaded comps rows with
// overrides applied and the anchor's thesis under name.
func (w *Workspace) SaveResearchSet(name string) (models.ResearchSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ResearchSet{}, ErrNameRequired
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.working.IsEmpty() {
		return models.ResearchSet{}, ErrNoWorkingSet
	}
	id, err := w.newID()
	if err != nil {
		return models.ResearchSet{}, fmt.Errorf("research set id: %w", err)
	}

	rows := []models.CompsRow{}
	var price float64
	if w.table != nil && w.table.generation == w.generation {
		rows = comps.Effective(w.table.Rows, w.overrides)
		price = w.table.AnchorPrice
	}

	set := models.ResearchSet{
		ID:            id,
		Name:          name,
		CreatedAt:     w.now().UTC(),
		AnchorTicker:  w.working.AnchorTicker,
		AnchorPrice:   price,
		CompTickers:   slices.Clone(w.working.CompTickers),
		CompsSnapshot: rows,
	}
	if n, ok := w.theses[set.AnchorTicker]; ok {
		c := cloneThesis(n)
		set.Thesis = &c
	} else if n, ok := w.storedThesisLocked(set.AnchorTicker); ok {
		set.Thesis = &n
	}

	w.sets = append([]models.ResearchSet{set}, w.sets...)
	w.persistSetsLocked()
	return cloneResearchSet(set), nil
}

func (w *Workspace) storedThesisLocked(ticker string) (models.ThesisNote, bool) {
	var none *models.ThesisNote
	n := storage.Get(w.store, storage.ThesisKey(ticker), none)
	if n == nil {
		return models.ThesisNote{}, false
	}
	n.Ticker = ticker
	n.Checklist = MergeChecklist(defaultChecklist, n.Checklist)
	return *n, true
}

// UpdateAssumptions replaces the free-text assumptions of set id; nothing
// else about a saved set can change.
func (w *Workspace) UpdateAssumptions(id, text string) (models.ResearchSet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOf(id)
	if i < 0 {
		return models.ResearchSet{}, ErrResearchSetNotFound
	}
	w.sets = slices.Clone(w.sets)
	w.sets[i].Assumptions = text
	w.persistSetsLocked()
	return cloneResearchSet(w.sets[i]), nil
}

// DeleteResearchSet removes set id.
func (w *Workspace) DeleteResearchSet(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOf(id)
	if i < 0 {
		return ErrResearchSetNotFound
	}
	w.sets = slices.Delete(slices.Clone(w.sets), i, i+1)
	w.persistSetsLocked()
	return nil
}

func (w *Workspace) indexOf(id string) int {
	return slices.IndexFunc(w.sets, func(s models.ResearchSet) bool { return s.ID == id })
}

func (w *Workspace) persistSetsLocked() {
	storage.Set(w.store, storage.KeyResearchSets, w.sets)
}

func cloneResearchSet(s models.ResearchSet) models.ResearchSet {
	s.CompTickers = slices.Clone(s.CompTickers)
	s.CompsSnapshot = slices.Clone(s.CompsSnapshot)
	if s.Thesis != nil {
		t := cloneThesis(*s.Thesis)
		s.Thesis = &t
	}
	return s
}
