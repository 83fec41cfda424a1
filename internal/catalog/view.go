package catalog

import (
	"slices"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// View is the catalog screen controller for one session. It owns the
// generated items, the filter and sort inputs, and the cached query result.
type View struct {
	debouncer *Debouncer

	mu         sync.RWMutex
	items      []models.Item
	input      string
	applied    string
	sort       SortKey
	filterSeq  uint64
	results    []models.Item
	recomputes int
}

// State is a point-in-time snapshot of the view
type State struct {
	Items   []models.Item `json:"items"`
	Filter  string        `json:"filter"`
	Applied string        `json:"appliedFilter"`
	Sort    SortKey       `json:"sort"`
	Pending bool          `json:"pending"`
}

// NewView creates an empty view whose filter input is debounced by d
func NewView(d *Debouncer) *View {
	if d == nil {
		d = NewDebouncer(nil, DefaultDebounce)
	}
	return &View{
		debouncer: d,
		sort:      DefaultSort,
		results:   []models.Item{},
	}
}

// Load starts a fresh catalog visit: new items, cleared filter, default sort
func (v *View) Load(items []models.Item) {
	v.debouncer.Cancel()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.items = slices.Clone(items)
	v.input = ""
	v.applied = ""
	v.sort = DefaultSort
	v.filterSeq++
	v.recompute()
}

// Loaded reports whether a catalog has been generated for this view
func (v *View) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.items != nil
}

// SetFilter records a keystroke. The filter applies once the input has been
// stable for the debounce delay; intermediate values are never evaluated.
func (v *View) SetFilter(text string) {
	v.mu.Lock()
	v.input = text
	v.filterSeq++
	seq := v.filterSeq
	v.mu.Unlock()

	v.debouncer.Trigger(func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if seq != v.filterSeq {
			return
		}
		v.applied = text
		v.recompute()
	})
}

// ApplyFilter applies text immediately, dropping any pending debounced input
func (v *View) ApplyFilter(text string) {
	v.debouncer.Cancel()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.input = text
	v.filterSeq++
	if v.applied == text {
		return
	}
	v.applied = text
	v.recompute()
}

// SetSort changes the ordering and recomputes immediately
func (v *View) SetSort(key SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.sort == key {
		return
	}
	v.sort = key
	v.recompute()
}

// Results returns the current filtered and sorted items
func (v *View) Results() []models.Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.results)
}

// Displayed looks up an item among the currently displayed results
func (v *View) Displayed(id int) (models.Item, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, item := range v.results {
		if item.ID == id {
			return item, true
		}
	}
	return models.Item{}, false
}

// Snapshot returns the view state
func (v *View) Snapshot() State {
	pending := v.debouncer.Pending()

	v.mu.RLock()
	defer v.mu.RUnlock()

	return State{
		Items:   slices.Clone(v.results),
		Filter:  v.input,
		Applied: v.applied,
		Sort:    v.sort,
		Pending: pending,
	}
}

// Recomputes counts how many times the result set was evaluated
func (v *View) Recomputes() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.recomputes
}

// recompute must be called with v.mu held
func (v *View) recompute() {
	v.results = Query(v.items, v.applied, v.sort)
	v.recomputes++
}

// Close drops any pending debounced filter
func (v *View) Close() {
	v.debouncer.Cancel()
}
