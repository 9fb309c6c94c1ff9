package formatter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// TreeItem is one line of a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	// Ancestors[i] is true when the ancestor at depth i+1 was the last of
	// its siblings, so no pipe is drawn under it.
	Ancestors []bool
	Detail    string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree draws items with box-drawing connectors and right-aligned
// detail badges.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}
	contents := make([]string, len(items))
	widest := 0
	for i, item := range items {
		var prefix strings.Builder
		if item.Level > 0 {
			for d := 1; d < item.Level; d++ {
				if d-1 < len(item.Ancestors) && item.Ancestors[d-1] {
					prefix.WriteString(treeBlank)
				} else {
					prefix.WriteString(treePipe)
				}
			}
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}
		title := item.Title
		if item.Level == 0 {
			title = Bold(title)
		}
		contents[i] = Dim(prefix.String()) + title
		widest = max(widest, lipgloss.Width(contents[i]))
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(contents[i])
		if item.Detail != "" {
			pad := widest - lipgloss.Width(contents[i])
			b.WriteString(strings.Repeat(" ", pad) + "  " + StyleBlue.Render("[ "+item.Detail+" ]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HierarchyTree lists h depth-first with siblings in stored order. Tactics
// carry the number of breakdown periods they hold.
func HierarchyTree(h *domain.Hierarchy) []TreeItem {
	if h == nil {
		return nil
	}
	var items []TreeItem
	add := func(e domain.Entity, level int, last bool, anc []bool, detail string) []bool {
		items = append(items, TreeItem{
			Title:     entityTitle(e),
			Level:     level,
			IsLast:    last,
			Ancestors: slices.Clone(anc),
			Detail:    detail,
		})
		if level == 0 {
			return anc
		}
		return append(slices.Clone(anc), last)
	}

	tabs := byOrder(h.Tabs, func(t domain.Tab) domain.Entity { return t.Entity })
	for _, tab := range tabs {
		anc := add(tab.Entity, 0, false, nil, string(domain.LevelTab))
		sections := byOrder(h.Sections[tab.ID], func(s domain.Section) domain.Entity { return s.Entity })
		for i, s := range sections {
			anc := add(s.Entity, 1, i == len(sections)-1, anc, "")
			tactics := byOrder(h.Tactics[s.ID], func(t domain.Tactic) domain.Entity { return t.Entity })
			for j, tc := range tactics {
				anc := add(tc.Entity, 2, j == len(tactics)-1, anc, periodDetail(tc))
				placements := byOrder(h.Placements[tc.ID], func(p domain.Placement) domain.Entity { return p.Entity })
				for k, p := range placements {
					anc := add(p.Entity, 3, k == len(placements)-1, anc, "")
					creatives := byOrder(h.Creatives[p.ID], func(c domain.Creative) domain.Entity { return c.Entity })
					for l, c := range creatives {
						add(c.Entity, 4, l == len(creatives)-1, anc, "")
					}
				}
			}
		}
	}
	return items
}

func byOrder[T any](items []T, entity func(T) domain.Entity) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int { return cmp.Compare(entity(a).Order, entity(b).Order) })
	return out
}

func entityTitle(e domain.Entity) string {
	if e.Name == "" {
		return Dim(e.ID)
	}
	return e.Name
}

func periodDetail(tc domain.Tactic) string {
	n := 0
	for _, data := range tc.Breakdowns {
		n += len(data.Periods)
	}
	if n == 0 {
		return ""
	}
	return pluralize(n, "period", "periods")
}
