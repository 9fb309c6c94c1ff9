package domain

import (
	"fmt"
	"strings"
)

// Level identifies one of the five nested levels of a campaign hierarchy.
type Level string

const (
	LevelTab       Level = "Tab"
	LevelSection   Level = "Section"
	LevelTactic    Level = "Tactic"
	LevelPlacement Level = "Placement"
	LevelCreative  Level = "Creative"
)

// Levels lists the hierarchy levels from root to leaf.
var Levels = []Level{LevelTab, LevelSection, LevelTactic, LevelPlacement, LevelCreative}

// Depth returns the zero-based depth of the level, or -1 for an unknown level.
func (l Level) Depth() int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return -1
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	for _, lv := range Levels {
		if strings.EqualFold(string(lv), strings.TrimSpace(s)) {
			return lv, nil
		}
	}
	return "", fmt.Errorf("unknown hierarchy level %q", s)
}

type BreakdownType string

const (
	BreakdownMonthly BreakdownType = "Monthly"
	BreakdownWeekly  BreakdownType = "Weekly"
	BreakdownPEBs    BreakdownType = "PEBs"
	BreakdownCustom  BreakdownType = "Custom"
)

// IsAutomatic reports whether periods of this type are generated from dates.
func (t BreakdownType) IsAutomatic() bool {
	return t == BreakdownMonthly || t == BreakdownWeekly || t == BreakdownPEBs
}

// ParseBreakdownType accepts a breakdown type name in any case.
func ParseBreakdownType(s string) (BreakdownType, error) {
	for _, bt := range []BreakdownType{BreakdownMonthly, BreakdownWeekly, BreakdownPEBs, BreakdownCustom} {
		if strings.EqualFold(string(bt), strings.TrimSpace(s)) {
			return bt, nil
		}
	}
	return "", fmt.Errorf("unknown breakdown type %q", s)
}

type Language string

const (
	LanguageFR Language = "FR"
	LanguageEN Language = "EN"
)

// ParseLanguage accepts "fr"/"en" in any case. An empty string is an error.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FR":
		return LanguageFR, nil
	case "EN":
		return LanguageEN, nil
	}
	return "", fmt.Errorf("unsupported language %q (expected FR or EN)", s)
}

type DocumentStatus string

const (
	DocumentCreating              DocumentStatus = "creating"
	DocumentAwaitingAuthorization DocumentStatus = "awaiting_authorization"
	DocumentCompleted             DocumentStatus = "completed"
	DocumentError                 DocumentStatus = "error"
)

// IsTerminal reports whether an export has finished in this status.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentCompleted || s == DocumentError
}
