package domain

import "time"

// BreakdownDefinition is a campaign-level schedule referenced by tactics.
type BreakdownDefinition struct {
	ID    string
	Name  string
	Type  BreakdownType
	Order int
}

// BreakdownData is the per-tactic stored data for one breakdown.
type BreakdownData struct {
	Periods []PeriodValue
}

// PeriodValue is one stored period of a tactic breakdown. StoredDate is an
// ISO date for automatic types; CustomName is the label for Custom ones.
type PeriodValue struct {
	ID         string
	StoredDate string
	CustomName string
	Order      int
	Value      float64
	UnitCost   float64
	Total      float64
	IsToggled  bool
}

// BreakdownRow is one flattened period. StartDate is nil for Custom
// breakdowns and for automatic periods whose stored date did not parse.
type BreakdownRow struct {
	TacticID       string
	BreakdownID    string
	BreakdownName  string
	BreakdownType  BreakdownType
	PeriodID       string
	PeriodName     string
	Value          float64
	UnitCost       float64
	Total          float64
	IsToggled      bool
	Order          int64
	BreakdownOrder int
	PeriodOrder    int
	StartDate      *time.Time
	CustomName     string
	StoredDate     string
}
