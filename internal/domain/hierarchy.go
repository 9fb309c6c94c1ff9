package domain

// Entity holds what every hierarchy level has in common. Fields carries the
// raw attributes read from the store, keyed by their stored name.
type Entity struct {
	ID     string
	Name   string
	Order  int
	Fields map[string]any
}

// Field returns a raw stored attribute and whether the entity defines it.
func (e Entity) Field(name string) (any, bool) {
	if e.Fields == nil {
		return nil, false
	}
	v, ok := e.Fields[name]
	return v, ok
}

type Tab struct {
	Entity
}

type Section struct {
	Entity
	TabID string
}

type Tactic struct {
	Entity
	TabID      string
	SectionID  string
	Breakdowns map[string]BreakdownData // keyed by breakdown definition id
}

type Placement struct {
	Entity
	TabID     string
	SectionID string
	TacticID  string
}

type Creative struct {
	Entity
	TabID       string
	SectionID   string
	TacticID    string
	PlacementID string
}

// Hierarchy is an in-memory snapshot of one campaign version. Children are
// indexed by their parent's id; every child also records its ancestor ids.
type Hierarchy struct {
	Tabs       []Tab
	Sections   map[string][]Section   // by tab id
	Tactics    map[string][]Tactic    // by section id
	Placements map[string][]Placement // by tactic id
	Creatives  map[string][]Creative  // by placement id

	BreakdownDefinitions map[string]BreakdownDefinition
}

// NewHierarchy returns an empty hierarchy with initialized lookup maps.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		Sections:             make(map[string][]Section),
		Tactics:              make(map[string][]Tactic),
		Placements:           make(map[string][]Placement),
		Creatives:            make(map[string][]Creative),
		BreakdownDefinitions: make(map[string]BreakdownDefinition),
	}
}

// EntityCount returns the number of entities across all five levels.
func (h *Hierarchy) EntityCount() int {
	n := len(h.Tabs)
	for _, v := range h.Sections {
		n += len(v)
	}
	for _, v := range h.Tactics {
		n += len(v)
	}
	for _, v := range h.Placements {
		n += len(v)
	}
	for _, v := range h.Creatives {
		n += len(v)
	}
	return n
}

// AllTactics returns every tactic in the snapshot, in no particular order.
func (h *Hierarchy) AllTactics() []Tactic {
	var out []Tactic
	for _, v := range h.Tactics {
		out = append(out, v...)
	}
	return out
}
