package testutil

import (
	"github.com/alexanderramin/mediasheet/internal/domain"
)

// EntityOption customizes an entity built by HierarchyBuilder.
type EntityOption func(*domain.Entity)

func WithOrder(n int) EntityOption {
	return func(e *domain.Entity) {
		e.Order = n
	}
}

// WithField sets one raw stored attribute.
func WithField(name string, value any) EntityOption {
	return func(e *domain.Entity) {
		if e.Fields == nil {
			e.Fields = map[string]any{}
		}
		e.Fields[name] = value
	}
}

func newEntity(id, name string, order int, opts []EntityOption) domain.Entity {
	e := domain.Entity{ID: id, Name: name, Order: order, Fields: map[string]any{}}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// HierarchyBuilder assembles a domain.Hierarchy for tests. Children are
// attached by parent id; ancestor ids are filled in from the parents already
// added. Sibling order defaults to insertion order.
type HierarchyBuilder struct {
	h          *domain.Hierarchy
	sections   map[string]domain.Section
	tactics    map[string]domain.Tactic
	placements map[string]domain.Placement
	counter    int
}

func NewHierarchyBuilder() *HierarchyBuilder {
	return &HierarchyBuilder{
		h:          domain.NewHierarchy(),
		sections:   map[string]domain.Section{},
		tactics:    map[string]domain.Tactic{},
		placements: map[string]domain.Placement{},
	}
}

func (b *HierarchyBuilder) next() int {
	b.counter++
	return b.counter
}

func (b *HierarchyBuilder) Tab(id, name string, opts ...EntityOption) *HierarchyBuilder {
	b.h.Tabs = append(b.h.Tabs, domain.Tab{Entity: newEntity(id, name, b.next(), opts)})
	return b
}

func (b *HierarchyBuilder) Section(tabID, id, name string, opts ...EntityOption) *HierarchyBuilder {
	s := domain.Section{Entity: newEntity(id, name, b.next(), opts), TabID: tabID}
	b.sections[id] = s
	b.h.Sections[tabID] = append(b.h.Sections[tabID], s)
	return b
}

func (b *HierarchyBuilder) Tactic(sectionID, id, name string, opts ...EntityOption) *HierarchyBuilder {
	parent := b.sections[sectionID]
	tc := domain.Tactic{
		Entity:     newEntity(id, name, b.next(), opts),
		TabID:      parent.TabID,
		SectionID:  sectionID,
		Breakdowns: map[string]domain.BreakdownData{},
	}
	b.tactics[id] = tc
	b.h.Tactics[sectionID] = append(b.h.Tactics[sectionID], tc)
	return b
}

func (b *HierarchyBuilder) Placement(tacticID, id, name string, opts ...EntityOption) *HierarchyBuilder {
	parent := b.tactics[tacticID]
	p := domain.Placement{
		Entity:    newEntity(id, name, b.next(), opts),
		TabID:     parent.TabID,
		SectionID: parent.SectionID,
		TacticID:  tacticID,
	}
	b.placements[id] = p
	b.h.Placements[tacticID] = append(b.h.Placements[tacticID], p)
	return b
}

func (b *HierarchyBuilder) Creative(placementID, id, name string, opts ...EntityOption) *HierarchyBuilder {
	parent := b.placements[placementID]
	c := domain.Creative{
		Entity:      newEntity(id, name, b.next(), opts),
		TabID:       parent.TabID,
		SectionID:   parent.SectionID,
		TacticID:    parent.TacticID,
		PlacementID: placementID,
	}
	b.h.Creatives[placementID] = append(b.h.Creatives[placementID], c)
	return b
}

// Breakdown registers a campaign-level breakdown definition.
func (b *HierarchyBuilder) Breakdown(id, name string, typ domain.BreakdownType, order int) *HierarchyBuilder {
	b.h.BreakdownDefinitions[id] = domain.BreakdownDefinition{ID: id, Name: name, Type: typ, Order: order}
	return b
}

// Periods attaches stored periods of one breakdown to an existing tactic.
func (b *HierarchyBuilder) Periods(tacticID, breakdownID string, periods ...domain.PeriodValue) *HierarchyBuilder {
	tc := b.tactics[tacticID]
	list := b.h.Tactics[tc.SectionID]
	for i := range list {
		if list[i].ID == tacticID {
			data := list[i].Breakdowns[breakdownID]
			data.Periods = append(data.Periods, periods...)
			list[i].Breakdowns[breakdownID] = data
		}
	}
	return b
}

func (b *HierarchyBuilder) Build() *domain.Hierarchy {
	return b.h
}

// DatedPeriod is a shorthand for an automatic-type stored period.
func DatedPeriod(id, isoDate string, value float64) domain.PeriodValue {
	return domain.PeriodValue{ID: id, StoredDate: isoDate, Value: value}
}

// CustomPeriod is a shorthand for a Custom-type stored period.
func CustomPeriod(id, name string, order int, value float64) domain.PeriodValue {
	return domain.PeriodValue{ID: id, CustomName: name, Order: order, Value: value}
}
