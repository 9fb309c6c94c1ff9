package export

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// MissingField is written when a column has no source for the row's level
// and the entity carries no attribute of that name, so mapping gaps show up
// in the sheet.
const MissingField = "XXX"

// HierarchyHeaders are the leading columns of the flattened table.
var HierarchyHeaders = []string{"Level", "Tab", "Section", "Tactic", "Placement"}

// ancestry is the ids carried down the traversal; the Creative level has
// no column of its own.
type ancestry struct {
	tab, section, tactic, placement string
}

// Flatten turns h into a header row plus one row per entity, depth-first in
// pre-order with siblings sorted by their stored order.
func Flatten(h *domain.Hierarchy, m *Mapping) ([][]string, error) {
	header := append(slices.Clone(HierarchyHeaders), m.Headers()...)
	table := [][]string{header}

	emit := func(level domain.Level, e domain.Entity, ids ancestry) error {
		if e.ID == "" {
			return fmt.Errorf("%w: %s %q has no id", ErrIntegrity, level, e.Name)
		}
		row := make([]string, 0, len(header))
		row = append(row, string(level), ids.tab, ids.section, ids.tactic, ids.placement)
		for _, col := range m.Columns {
			row = append(row, cellFor(col, level, e))
		}
		table = append(table, row)
		return nil
	}

	for _, tab := range sortedByOrder(h.Tabs, func(t domain.Tab) domain.Entity { return t.Entity }) {
		ids := ancestry{tab: tab.ID}
		if err := emit(domain.LevelTab, tab.Entity, ids); err != nil {
			return nil, err
		}
		for _, s := range sortedByOrder(h.Sections[tab.ID], func(s domain.Section) domain.Entity { return s.Entity }) {
			ids := ancestry{tab: tab.ID, section: s.ID}
			if err := emit(domain.LevelSection, s.Entity, ids); err != nil {
				return nil, err
			}
			for _, tc := range sortedByOrder(h.Tactics[s.ID], func(t domain.Tactic) domain.Entity { return t.Entity }) {
				ids := ancestry{tab: tab.ID, section: s.ID, tactic: tc.ID}
				if err := emit(domain.LevelTactic, tc.Entity, ids); err != nil {
					return nil, err
				}
				for _, p := range sortedByOrder(h.Placements[tc.ID], func(p domain.Placement) domain.Entity { return p.Entity }) {
					ids := ancestry{tab: tab.ID, section: s.ID, tactic: tc.ID, placement: p.ID}
					if err := emit(domain.LevelPlacement, p.Entity, ids); err != nil {
						return nil, err
					}
					for _, c := range sortedByOrder(h.Creatives[p.ID], func(c domain.Creative) domain.Entity { return c.Entity }) {
						if err := emit(domain.LevelCreative, c.Entity, ids); err != nil {
							return nil, err
						}
					}
				}
			}
		}
	}
	return table, nil
}

func cellFor(col Column, level domain.Level, e domain.Entity) string {
	acc, ok := col.Accessor(level)
	if !ok {
		if _, defined := e.Field(col.Name); defined {
			return ""
		}
		return MissingField
	}
	v, defined := acc.Get(e)
	if !defined {
		return ""
	}
	return FormatValue(v)
}

// sortedByOrder returns a copy of items stably sorted by entity order.
func sortedByOrder[T any](items []T, entity func(T) domain.Entity) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(entity(a).Order, entity(b).Order)
	})
	return out
}

// OrderedTactics lists tactics in the same order Flatten visits them.
func OrderedTactics(h *domain.Hierarchy) []domain.Tactic {
	var out []domain.Tactic
	for _, tab := range sortedByOrder(h.Tabs, func(t domain.Tab) domain.Entity { return t.Entity }) {
		for _, s := range sortedByOrder(h.Sections[tab.ID], func(s domain.Section) domain.Entity { return s.Entity }) {
			out = append(out, sortedByOrder(h.Tactics[s.ID], func(t domain.Tactic) domain.Entity { return t.Entity })...)
		}
	}
	return out
}

// OrderedTabs lists the hierarchy tabs sorted by their stored order.
func OrderedTabs(tabs []domain.Tab) []domain.Tab {
	return sortedByOrder(tabs, func(t domain.Tab) domain.Entity { return t.Entity })
}

// Values converts a text table to the cell shape the sheet surface writes.
func Values(table [][]string) [][]any {
	out := make([][]any, len(table))
	for i, row := range table {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}
