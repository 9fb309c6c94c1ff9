package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

func TestConvert_MinimalSnapshot(t *testing.T) {
	snap, err := Convert(validMinimalSchema())
	require.NoError(t, err)

	assert.Equal(t, domain.VersionRef{ClientID: "client-1", CampaignID: "campaign-1", VersionID: "version-1"}, snap.Ref)
	assert.Equal(t, domain.LanguageFR, snap.Client.ExportLanguage)
	assert.NotNil(t, snap.Campaign.Fields)
	require.Len(t, snap.Hierarchy.Tabs, 1)
	assert.Equal(t, "Digital", snap.Hierarchy.Tabs[0].Name)
	assert.Empty(t, snap.Documents)
}

func TestConvert_FullSnapshotStampsAncestors(t *testing.T) {
	snap, err := Convert(validFullSchema())
	require.NoError(t, err)
	h := snap.Hierarchy

	assert.Equal(t, 5, h.EntityCount())

	require.Len(t, h.Sections["tab-1"], 1)
	assert.Equal(t, "tab-1", h.Sections["tab-1"][0].TabID)

	require.Len(t, h.Tactics["sec-1"], 1)
	tactic := h.Tactics["sec-1"][0]
	assert.Equal(t, "tab-1", tactic.TabID)
	assert.Equal(t, "sec-1", tactic.SectionID)
	assert.Equal(t, 12000.0, tactic.Fields["TC_Budget"])
	require.Len(t, tactic.Breakdowns["bd-m"].Periods, 2)
	assert.Equal(t, "2025-04-01T00:00:00Z", tactic.Breakdowns["bd-m"].Periods[1].StoredDate)
	assert.Equal(t, "Launch", tactic.Breakdowns["bd-c"].Periods[0].CustomName)

	creative := h.Creatives["pl-1"][0]
	assert.Equal(t, domain.Creative{
		Entity:      domain.Entity{ID: "cr-1", Name: "RSA 1", Fields: map[string]any{}},
		TabID:       "tab-1",
		SectionID:   "sec-1",
		TacticID:    "tac-1",
		PlacementID: "pl-1",
	}, creative)

	assert.Equal(t, domain.BreakdownCustom, h.BreakdownDefinitions["bd-c"].Type)
}

func TestConvert_ReferenceData(t *testing.T) {
	snap, err := Convert(validFullSchema())
	require.NoError(t, err)

	require.Len(t, snap.Shortcodes, 1)
	assert.Equal(t, "Television", snap.Shortcodes[0].DisplayNameEN)

	require.Len(t, snap.Templates, 1)
	assert.True(t, snap.Templates[0].DuplicateTabs)
	assert.Equal(t, domain.LanguageEN, snap.Templates[0].Language)

	require.Len(t, snap.Documents, 1)
	doc := snap.Documents[0]
	assert.NotEmpty(t, doc.ID, "missing document ids are generated")
	assert.Equal(t, "sheet-1", doc.SpreadsheetID)
	assert.Equal(t, domain.DocumentCreating, doc.Status)
}

func TestConvert_GeneratesVersionID(t *testing.T) {
	s := validMinimalSchema()
	s.Version.ID = ""

	snap, err := Convert(s)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Ref.VersionID)
}

func TestLoadSnapshotSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"client": {"id": "c1", "name": "Acme"},
		"campaign": {"id": "cp1", "name": "Spring", "fields": {"CA_Budget": 50000}},
		"version": {"id": "v1", "name": "v1"},
		"tabs": [{"id": "t1", "name": "Digital", "order": 0,
			"sections": [{"id": "s1", "name": "Search", "tactics": [{"id": "tc1", "name": "Ads",
				"breakdowns": {"bd": [{"id": "p1", "date": "2025-03-01", "value": 10}]}}]}]}]
	}`), 0o644))

	schema, err := LoadSnapshotSchema(path)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, schema.Campaign.Fields["CA_Budget"])
	assert.Equal(t, 10.0, schema.Tabs[0].Sections[0].Tactics[0].Breakdowns["bd"][0].Value)

	_, err = ParseSnapshotSchema([]byte("{not json"))
	assert.ErrorContains(t, err, "parsing import file")
}
