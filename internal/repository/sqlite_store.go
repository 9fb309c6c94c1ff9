package repository

import "github.com/alexanderramin/mediasheet/internal/db"

// NewSQLiteStore wires every reader of the export pipeline to the local store.
func NewSQLiteStore(conn db.DBTX) Store {
	campaigns := NewSQLiteCampaignRepo(conn)
	return Store{
		Hierarchy:  NewSQLiteHierarchyRepo(conn),
		Breakdowns: campaigns,
		Campaigns:  campaigns,
		Shortcodes: NewSQLiteShortcodeRepo(conn),
		Clients:    campaigns,
		Templates:  campaigns,
		Documents:  NewSQLiteDocumentRepo(conn),
	}
}
