package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL DEFAULT '',
		export_language TEXT NOT NULL DEFAULT 'FR'
		                CHECK(export_language IN ('FR','EN'))
	)`,

	`CREATE TABLE IF NOT EXISTS campaigns (
		id          TEXT PRIMARY KEY,
		client_id   TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		fields_json TEXT NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS campaign_versions (
		id          TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		name        TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS breakdown_definitions (
		id          TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		type        TEXT NOT NULL CHECK(type IN ('Monthly','Weekly','PEBs','Custom')),
		order_index INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS tabs (
		id          TEXT PRIMARY KEY,
		version_id  TEXT NOT NULL REFERENCES campaign_versions(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		fields_json TEXT NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS sections (
		id          TEXT PRIMARY KEY,
		tab_id      TEXT NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		fields_json TEXT NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS tactics (
		id          TEXT PRIMARY KEY,
		section_id  TEXT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		fields_json TEXT NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS tactic_breakdown_periods (
		tactic_id    TEXT NOT NULL REFERENCES tactics(id) ON DELETE CASCADE,
		breakdown_id TEXT NOT NULL,
		period_id    TEXT NOT NULL,
		stored_date  TEXT NOT NULL DEFAULT '',
		custom_name  TEXT NOT NULL DEFAULT '',
		order_index  INTEGER NOT NULL DEFAULT 0,
		value        REAL NOT NULL DEFAULT 0,
		unit_cost    REAL NOT NULL DEFAULT 0,
		total        REAL NOT NULL DEFAULT 0,
		is_toggled   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tactic_id, breakdown_id, period_id)
	)`,

	`CREATE TABLE IF NOT EXISTS placements (
		id          TEXT PRIMARY KEY,
		tactic_id   TEXT NOT NULL REFERENCES tactics(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		fields_json TEXT NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS creatives (
		id           TEXT PRIMARY KEY,
		placement_id TEXT NOT NULL REFERENCES placements(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		order_index  INTEGER NOT NULL DEFAULT 0,
		fields_json  TEXT NOT NULL DEFAULT '{}'
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tabs_version ON tabs(version_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_tab ON sections(tab_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tactics_section ON tactics(section_id)`,
	`CREATE INDEX IF NOT EXISTS idx_placements_tactic ON placements(tactic_id)`,
	`CREATE INDEX IF NOT EXISTS idx_creatives_placement ON creatives(placement_id)`,
	`CREATE INDEX IF NOT EXISTS idx_breakdowns_campaign ON breakdown_definitions(campaign_id)`,

	`CREATE TABLE IF NOT EXISTS shortcodes (
		id              TEXT PRIMARY KEY,
		code            TEXT NOT NULL DEFAULT '',
		display_name_fr TEXT NOT NULL DEFAULT '',
		display_name_en TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS templates (
		id             TEXT PRIMARY KEY,
		client_id      TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		name           TEXT NOT NULL,
		duplicate_tabs INTEGER NOT NULL DEFAULT 0
	)`,

	`ALTER TABLE templates ADD COLUMN language TEXT NOT NULL DEFAULT ''`,

	`CREATE TABLE IF NOT EXISTS documents (
		id                TEXT PRIMARY KEY,
		version_id        TEXT NOT NULL REFERENCES campaign_versions(id) ON DELETE CASCADE,
		name              TEXT NOT NULL DEFAULT '',
		spreadsheet_id    TEXT NOT NULL,
		template_id       TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL DEFAULT 'creating'
		                  CHECK(status IN ('creating','awaiting_authorization','completed','error')),
		status_message    TEXT NOT NULL DEFAULT '',
		last_data_sync_at TEXT,
		last_data_sync_by TEXT NOT NULL DEFAULT '',
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_documents_version ON documents(version_id)`,

	`CREATE TABLE IF NOT EXISTS cache_entries (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at TEXT NOT NULL
	)`,
}
