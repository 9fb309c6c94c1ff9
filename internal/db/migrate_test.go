package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time; the ALTER TABLE must be tolerated.
	err := Migrate(db)
	require.NoError(t, err)

	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"clients", "campaigns", "campaign_versions", "breakdown_definitions",
		"tabs", "sections", "tactics", "tactic_breakdown_periods", "placements", "creatives",
		"shortcodes", "templates", "documents", "cache_entries",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_tabs_version",
		"idx_sections_tab",
		"idx_tactics_section",
		"idx_placements_tactic",
		"idx_creatives_placement",
		"idx_breakdowns_campaign",
		"idx_documents_version",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_TemplateLanguageColumn(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO clients (id, name) VALUES ('c1', 'Client')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO templates (id, client_id, name, duplicate_tabs, language) VALUES ('t1', 'c1', 'Plan', 1, 'EN')`)
	require.NoError(t, err)

	var lang string
	require.NoError(t, db.QueryRow(`SELECT language FROM templates WHERE id = 't1'`).Scan(&lang))
	assert.Equal(t, "EN", lang)
}

func TestMigrate_RejectsUnknownBreakdownType(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO clients (id) VALUES ('c1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO campaigns (id, client_id, name) VALUES ('cp1', 'c1', 'Spring')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO breakdown_definitions (id, campaign_id, name, type) VALUES ('b1', 'cp1', 'Daily', 'Daily')`)
	assert.Error(t, err)
}
