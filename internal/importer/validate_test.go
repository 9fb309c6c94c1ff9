package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entity(id, name string, order int) EntityImport {
	return EntityImport{ID: id, Name: name, Order: order}
}

func validMinimalSchema() *SnapshotSchema {
	return &SnapshotSchema{
		Client:   ClientImport{ID: "client-1", Name: "Acme", ExportLanguage: "fr"},
		Campaign: CampaignImport{ID: "campaign-1", Name: "Spring launch"},
		Version:  VersionImport{ID: "version-1", Name: "v1"},
		Tabs: []TabImport{
			{EntityImport: entity("tab-1", "Digital", 0)},
		},
	}
}

func validFullSchema() *SnapshotSchema {
	s := validMinimalSchema()
	s.Breakdowns = []BreakdownImport{
		{ID: "bd-m", Name: "Monthly", Type: "Monthly", Order: 0},
		{ID: "bd-c", Name: "Flights", Type: "custom", Order: 1},
	}
	s.Tabs = []TabImport{{
		EntityImport: entity("tab-1", "Digital", 0),
		Sections: []SectionImport{{
			EntityImport: entity("sec-1", "Search", 0),
			Tactics: []TacticImport{{
				EntityImport: EntityImport{ID: "tac-1", Name: "Google Ads", Fields: map[string]any{"TC_Budget": 12000.0}},
				Breakdowns: map[string][]PeriodImport{
					"bd-m": {{ID: "p1", Date: "2025-03-01", Value: 4000}, {ID: "p2", Date: "2025-04-01T00:00:00Z", Value: 8000}},
					"bd-c": {{ID: "c1", CustomName: "Launch"}},
				},
				Placements: []PlacementImport{{
					EntityImport: entity("pl-1", "Brand terms", 0),
					Creatives:    []EntityImport{entity("cr-1", "RSA 1", 0)},
				}},
			}},
		}},
	}}
	s.Shortcodes = []ShortcodeImport{{ID: "SC001", Code: "TV", DisplayNameFR: "Télévision", DisplayNameEN: "Television"}}
	s.Templates = []TemplateImport{{ID: "tmpl-1", Name: "Media plan", DuplicateTabs: true, Language: "EN"}}
	s.Documents = []DocumentImport{{Name: "Plan", SpreadsheetID: "sheet-1", TemplateID: "tmpl-1"}}
	return s
}

func joined(errs []error) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

func TestValidateSnapshotSchema_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateSnapshotSchema(validMinimalSchema()))
}

func TestValidateSnapshotSchema_ValidFull(t *testing.T) {
	assert.Empty(t, ValidateSnapshotSchema(validFullSchema()))
}

func TestValidateSnapshotSchema_MissingRequiredFields(t *testing.T) {
	s := &SnapshotSchema{Client: ClientImport{ExportLanguage: "de"}}

	msg := joined(ValidateSnapshotSchema(s))
	assert.Contains(t, msg, "client.id is required")
	assert.Contains(t, msg, "client.export_language")
	assert.Contains(t, msg, "campaign.id is required")
	assert.Contains(t, msg, "campaign.name is required")
}

func TestValidateSnapshotSchema_DuplicateIDsPerLevel(t *testing.T) {
	s := validFullSchema()
	s.Tabs = append(s.Tabs, TabImport{
		EntityImport: entity("tab-1", "Again", 1),
		Sections:     []SectionImport{{EntityImport: entity("sec-1", "Again", 0)}},
	})

	msg := joined(ValidateSnapshotSchema(s))
	assert.Contains(t, msg, `tabs[1].id: duplicate Tab id "tab-1"`)
	assert.Contains(t, msg, `tabs[1].sections[0].id: duplicate Section id "sec-1"`)
}

func TestValidateSnapshotSchema_SameIDOnDifferentLevelsIsAllowed(t *testing.T) {
	s := validMinimalSchema()
	s.Tabs[0].Sections = []SectionImport{{EntityImport: entity("tab-1", "Search", 0)}}
	assert.Empty(t, ValidateSnapshotSchema(s))
}

func TestValidateSnapshotSchema_MissingEntityFields(t *testing.T) {
	s := validMinimalSchema()
	s.Tabs[0].Sections = []SectionImport{{
		Tactics: []TacticImport{{EntityImport: entity("tac-1", "", 0)}},
	}}

	msg := joined(ValidateSnapshotSchema(s))
	assert.Contains(t, msg, "tabs[0].sections[0].id is required")
	assert.Contains(t, msg, "tabs[0].sections[0].name is required")
	assert.Contains(t, msg, "tabs[0].sections[0].tactics[0].name is required")
}

func TestValidateSnapshotSchema_Breakdowns(t *testing.T) {
	s := validFullSchema()
	s.Breakdowns = append(s.Breakdowns, BreakdownImport{ID: "bd-m", Type: "Yearly"})
	tactic := &s.Tabs[0].Sections[0].Tactics[0]
	tactic.Breakdowns["bd-x"] = []PeriodImport{{ID: "x"}}
	tactic.Breakdowns["bd-m"] = append(tactic.Breakdowns["bd-m"], PeriodImport{ID: "p1", Date: "March"})

	msg := joined(ValidateSnapshotSchema(s))
	assert.Contains(t, msg, `breakdowns[2].id: duplicate id "bd-m"`)
	assert.Contains(t, msg, `breakdowns[2].type: unknown breakdown type "Yearly"`)
	assert.Contains(t, msg, `definition "bd-x" not found`)
	assert.Contains(t, msg, `duplicate period "p1"`)
	assert.Contains(t, msg, `invalid date format "March"`)
}

func TestValidateSnapshotSchema_CustomPeriodsNeedNoDate(t *testing.T) {
	s := validFullSchema()
	s.Tabs[0].Sections[0].Tactics[0].Breakdowns["bd-c"] = []PeriodImport{{ID: "c1", Date: "not a date"}}
	assert.Empty(t, ValidateSnapshotSchema(s))
}

func TestValidateSnapshotSchema_DocumentsAndTemplates(t *testing.T) {
	s := validFullSchema()
	s.Templates = append(s.Templates, TemplateImport{ID: "tmpl-2", Language: "es"})
	s.Documents = append(s.Documents,
		DocumentImport{SpreadsheetID: "sheet-1"},
		DocumentImport{SpreadsheetID: "sheet-2", TemplateID: "tmpl-9"},
		DocumentImport{},
	)

	msg := joined(ValidateSnapshotSchema(s))
	assert.Contains(t, msg, "templates[1].name is required")
	assert.Contains(t, msg, "templates[1].language")
	assert.Contains(t, msg, `documents[1].spreadsheet_id: "sheet-1" is already attached`)
	assert.Contains(t, msg, `documents[2].template_id: template "tmpl-9" not found`)
	assert.Contains(t, msg, "documents[3].spreadsheet_id is required")
}

func TestValidateSnapshotSchema_Shortcodes(t *testing.T) {
	s := validMinimalSchema()
	s.Shortcodes = []ShortcodeImport{
		{ID: "SC001", DisplayNameFR: "Radio"},
		{ID: "SC001"},
	}

	errs := ValidateSnapshotSchema(s)
	require.Len(t, errs, 2)
	assert.Contains(t, joined(errs), `shortcodes[1].id: duplicate id "SC001"`)
	assert.Contains(t, joined(errs), "shortcodes[1].display_name_fr is required")
}
