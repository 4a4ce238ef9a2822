// Package editor implements the UI-agnostic controller for enabling and
// disabling catalog flows.
package editor

import (
	"errors"
	"fmt"

	"github.com/minesite-tools/water-balance/internal/catalog"
	"github.com/minesite-tools/water-balance/internal/flowconfig"
)

// ErrUnknownFlow indicates an edit referenced a code that is not in the
// catalog, e.g. a stale entry for a flow that has since been removed.
var ErrUnknownFlow = errors.New("unknown flow code")

// FlowState pairs a catalog definition with its current enabled state.
type FlowState struct {
	Definition catalog.FlowDefinition
	Enabled    bool
}

// CategoryGroup is the editor listing for one category, in catalog
// declaration order.
type CategoryGroup struct {
	Category catalog.Category
	Flows    []FlowState
}

// Editor tracks in-memory enabled state for every catalog flow and persists
// it through the configuration store on commit.
type Editor struct {
	catalog *catalog.Catalog
	store   flowconfig.Store
	enabled map[string]bool
}

// New constructs an Editor seeded from the store's current contents. Codes
// absent from the store default to enabled; stored codes not in the catalog
// are dropped.
func New(cat *catalog.Catalog, store flowconfig.Store) *Editor {
	saved := store.Load()
	enabled := make(map[string]bool, cat.Len())
	for _, def := range cat.Definitions() {
		state, ok := saved[def.Code]
		if !ok {
			state = true
		}
		enabled[def.Code] = state
	}
	return &Editor{
		catalog: cat,
		store:   store,
		enabled: enabled,
	}
}

// ListByCategory returns the catalog grouped by category with current
// enabled state, ordered inflow, recirculation, outflow.
func (e *Editor) ListByCategory() []CategoryGroup {
	groups := make([]CategoryGroup, 0, len(catalog.Categories))
	for _, category := range catalog.Categories {
		group := CategoryGroup{Category: category}
		for _, def := range e.catalog.ByCategory(category) {
			group.Flows = append(group.Flows, FlowState{
				Definition: def,
				Enabled:    e.enabled[def.Code],
			})
		}
		groups = append(groups, group)
	}
	return groups
}

// Enabled reports the current in-memory state for one code.
func (e *Editor) Enabled(code string) (bool, error) {
	state, ok := e.enabled[code]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownFlow, code)
	}
	return state, nil
}

// Toggle flips the in-memory enabled state for one code. No I/O happens
// until Commit.
func (e *Editor) Toggle(code string) error {
	state, ok := e.enabled[code]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFlow, code)
	}
	e.enabled[code] = !state
	return nil
}

// SetEnabled sets the in-memory enabled state for one code.
func (e *Editor) SetEnabled(code string, enabled bool) error {
	if _, ok := e.enabled[code]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFlow, code)
	}
	e.enabled[code] = enabled
	return nil
}

// Mapping returns a copy of the full in-memory mapping, one entry per
// catalog code.
func (e *Editor) Mapping() map[string]bool {
	out := make(map[string]bool, len(e.enabled))
	for code, enabled := range e.enabled {
		out[code] = enabled
	}
	return out
}

// Commit persists the full mapping through the store.
func (e *Editor) Commit() error {
	return e.store.Save(e.Mapping())
}
