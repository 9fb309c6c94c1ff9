package repository_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/repository"
	"github.com/alexanderramin/mediasheet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededHierarchy() *domain.Hierarchy {
	return testutil.NewHierarchyBuilder().
		Breakdown("bd-month", "Monthly", domain.BreakdownMonthly, 1).
		Tab("tab1", "Digital", testutil.WithField("ONGLET_Budget", 15000.0)).
		Section("tab1", "sec1", "Social").
		Tactic("sec1", "tc1", "Facebook", testutil.WithField("TC_Media_Type", "SC001")).
		Periods("tc1", "bd-month",
			testutil.DatedPeriod("p1", "2025-01-01", 100),
			testutil.DatedPeriod("p2", "2025-02-01", 200)).
		Placement("tc1", "pl1", "Feed").
		Creative("pl1", "cr1", "Video 15s").
		Build()
}

func TestHierarchyRepo_ListsEveryLevel(t *testing.T) {
	database := testutil.NewTestDB(t)
	ref := testutil.SeedVersion(t, database)
	testutil.SeedHierarchy(t, database, ref, seededHierarchy())
	repo := repository.NewSQLiteHierarchyRepo(database)
	ctx := context.Background()

	tabs, err := repo.ListTabs(ctx, ref)
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, "Digital", tabs[0].Name)
	assert.Equal(t, 15000.0, tabs[0].Fields["ONGLET_Budget"])

	sections, err := repo.ListSections(ctx, ref, "tab1")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "sec1", sections[0].ID)

	tactics, err := repo.ListTactics(ctx, ref, "tab1", "sec1")
	require.NoError(t, err)
	require.Len(t, tactics, 1)
	assert.Equal(t, "SC001", tactics[0].Fields["TC_Media_Type"])
	require.Contains(t, tactics[0].Breakdowns, "bd-month")
	periods := tactics[0].Breakdowns["bd-month"].Periods
	require.Len(t, periods, 2)
	assert.Equal(t, "2025-01-01", periods[0].StoredDate)
	assert.Equal(t, 200.0, periods[1].Value)

	placements, err := repo.ListPlacements(ctx, ref, "tab1", "sec1", "tc1")
	require.NoError(t, err)
	require.Len(t, placements, 1)
	assert.Equal(t, "tc1", placements[0].TacticID)

	creatives, err := repo.ListCreatives(ctx, ref, "tab1", "sec1", "tc1", "pl1")
	require.NoError(t, err)
	require.Len(t, creatives, 1)
	assert.Equal(t, "Video 15s", creatives[0].Name)
	assert.Equal(t, "pl1", creatives[0].PlacementID)
}

func TestHierarchyRepo_ListTabs_ScopedToVersion(t *testing.T) {
	database := testutil.NewTestDB(t)
	ref := testutil.SeedVersion(t, database)
	other := testutil.SeedVersion(t, database)
	testutil.SeedHierarchy(t, database, ref, seededHierarchy())

	tabs, err := repository.NewSQLiteHierarchyRepo(database).ListTabs(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, tabs)
}

func TestCampaignRepo_BreakdownDefinitionsAndTemplates(t *testing.T) {
	database := testutil.NewTestDB(t)
	ref := testutil.SeedVersion(t, database)
	testutil.SeedHierarchy(t, database, ref, seededHierarchy())
	repo := repository.NewSQLiteCampaignRepo(database)
	ctx := context.Background()

	defs, err := repo.ListBreakdownDefinitions(ctx, ref.ClientID, ref.CampaignID)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, domain.BreakdownMonthly, defs[0].Type)

	require.NoError(t, repo.CreateTemplate(ctx, ref.ClientID, domain.Template{
		ID: "tpl1", Name: "Media plan", DuplicateTabs: true, Language: domain.LanguageEN,
	}))
	tpl, err := repo.GetTemplate(ctx, ref.ClientID, "tpl1")
	require.NoError(t, err)
	assert.True(t, tpl.DuplicateTabs)
	assert.Equal(t, domain.LanguageEN, tpl.Language)

	_, err = repo.GetTemplate(ctx, ref.ClientID, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	info, err := repo.GetClientInfo(ctx, ref.ClientID)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageFR, info.ExportLanguage)
}

func TestShortcodeRepo_UpsertReplacesLabels(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteShortcodeRepo(database)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, domain.Shortcode{ID: "SC001", Code: "TV", DisplayNameFR: "Télé"}))
	require.NoError(t, repo.Upsert(ctx, domain.Shortcode{ID: "SC001", Code: "TV", DisplayNameFR: "Télévision", DisplayNameEN: "Television"}))

	list, err := repo.ListShortcodes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Télévision", list[0].DisplayNameFR)
	assert.Equal(t, "Television", list[0].DisplayNameEN)
}
