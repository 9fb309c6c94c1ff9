package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/mediasheet/internal/db"
	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/repository"
	"github.com/google/uuid"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// SeedVersion inserts a client, a campaign and one version and returns the
// reference to that version.
func SeedVersion(t *testing.T, database *sql.DB) domain.VersionRef {
	t.Helper()
	ctx := context.Background()
	ref := domain.VersionRef{
		ClientID:   uuid.NewString(),
		CampaignID: uuid.NewString(),
		VersionID:  uuid.NewString(),
	}
	campaigns := repository.NewSQLiteCampaignRepo(database)
	if err := campaigns.CreateClient(ctx, domain.ClientInfo{ID: ref.ClientID, Name: "Client", ExportLanguage: domain.LanguageFR}); err != nil {
		t.Fatalf("seeding client: %v", err)
	}
	if err := campaigns.CreateCampaign(ctx, ref.ClientID, domain.Campaign{ID: ref.CampaignID, Name: "Campaign"}); err != nil {
		t.Fatalf("seeding campaign: %v", err)
	}
	if err := campaigns.CreateVersion(ctx, ref.CampaignID, ref.VersionID, "v1"); err != nil {
		t.Fatalf("seeding version: %v", err)
	}
	return ref
}

// SeedHierarchy writes every entity of h under the version ref points to.
func SeedHierarchy(t *testing.T, database *sql.DB, ref domain.VersionRef, h *domain.Hierarchy) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewSQLiteHierarchyRepo(database)
	campaigns := repository.NewSQLiteCampaignRepo(database)

	for _, def := range h.BreakdownDefinitions {
		if err := campaigns.CreateBreakdownDefinition(ctx, ref.CampaignID, def); err != nil {
			t.Fatalf("seeding breakdown %s: %v", def.ID, err)
		}
	}
	for _, tab := range h.Tabs {
		if err := repo.CreateTab(ctx, ref.VersionID, tab); err != nil {
			t.Fatalf("seeding tab %s: %v", tab.ID, err)
		}
		for _, s := range h.Sections[tab.ID] {
			if err := repo.CreateSection(ctx, s); err != nil {
				t.Fatalf("seeding section %s: %v", s.ID, err)
			}
			for _, tc := range h.Tactics[s.ID] {
				if err := repo.CreateTactic(ctx, tc); err != nil {
					t.Fatalf("seeding tactic %s: %v", tc.ID, err)
				}
				for _, p := range h.Placements[tc.ID] {
					if err := repo.CreatePlacement(ctx, p); err != nil {
						t.Fatalf("seeding placement %s: %v", p.ID, err)
					}
					for _, c := range h.Creatives[p.ID] {
						if err := repo.CreateCreative(ctx, c); err != nil {
							t.Fatalf("seeding creative %s: %v", c.ID, err)
						}
					}
				}
			}
		}
	}
}
