package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// SnapshotSchema is the top-level JSON structure of a campaign snapshot
// import: one client, one campaign and one version with its full hierarchy.
type SnapshotSchema struct {
	Client     ClientImport      `json:"client"`
	Campaign   CampaignImport    `json:"campaign"`
	Version    VersionImport     `json:"version"`
	Breakdowns []BreakdownImport `json:"breakdowns,omitempty"`
	Tabs       []TabImport       `json:"tabs"`
	Shortcodes []ShortcodeImport `json:"shortcodes,omitempty"`
	Templates  []TemplateImport  `json:"templates,omitempty"`
	Documents  []DocumentImport  `json:"documents,omitempty"`
}

type ClientImport struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ExportLanguage string `json:"export_language,omitempty"`
}

type CampaignImport struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields,omitempty"`
}

// VersionImport gets a generated id when ID is empty.
type VersionImport struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type BreakdownImport struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Order int    `json:"order"`
}

// EntityImport holds what every hierarchy level has in common.
type EntityImport struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Order  int            `json:"order"`
	Fields map[string]any `json:"fields,omitempty"`
}

type TabImport struct {
	EntityImport
	Sections []SectionImport `json:"sections,omitempty"`
}

type SectionImport struct {
	EntityImport
	Tactics []TacticImport `json:"tactics,omitempty"`
}

type TacticImport struct {
	EntityImport
	Breakdowns map[string][]PeriodImport `json:"breakdowns,omitempty"`
	Placements []PlacementImport         `json:"placements,omitempty"`
}

type PeriodImport struct {
	ID         string  `json:"id"`
	Date       string  `json:"date,omitempty"`
	CustomName string  `json:"custom_name,omitempty"`
	Order      int     `json:"order"`
	Value      float64 `json:"value"`
	UnitCost   float64 `json:"unit_cost"`
	Total      float64 `json:"total"`
	IsToggled  bool    `json:"is_toggled"`
}

type PlacementImport struct {
	EntityImport
	Creatives []EntityImport `json:"creatives,omitempty"`
}

type ShortcodeImport struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	DisplayNameFR string `json:"display_name_fr"`
	DisplayNameEN string `json:"display_name_en,omitempty"`
}

type TemplateImport struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DuplicateTabs bool   `json:"duplicate_tabs"`
	Language      string `json:"language,omitempty"`
}

// DocumentImport gets a generated id when ID is empty.
type DocumentImport struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	SpreadsheetID string `json:"spreadsheet_id"`
	TemplateID    string `json:"template_id,omitempty"`
}

// LoadSnapshotSchema reads and parses a snapshot JSON file.
func LoadSnapshotSchema(path string) (*SnapshotSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSnapshotSchema(data)
}

func ParseSnapshotSchema(data []byte) (*SnapshotSchema, error) {
	var schema SnapshotSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
