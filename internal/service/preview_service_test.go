package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/repository"
	"github.com/alexanderramin/mediasheet/internal/shortcode"
	"github.com/alexanderramin/mediasheet/internal/testutil"
)

func importedStore(t *testing.T) (repository.Store, domain.VersionRef) {
	t.Helper()
	database := testutil.NewTestDB(t)
	res, err := NewImportService(testutil.NewTestUoW(database)).
		ImportSnapshotFromSchema(context.Background(), snapshotSchema("v1"))
	require.NoError(t, err)
	return repository.NewSQLiteStore(database), res.Ref
}

func TestPreview_BuildsTablesFromStore(t *testing.T) {
	store, ref := importedStore(t)
	codes := shortcode.NewCache(store.Shortcodes, time.Minute, nil)
	svc := NewPreviewService(store, codes, PreviewOptions{})

	p, err := svc.Preview(context.Background(), ref, "")
	require.NoError(t, err)

	assert.Equal(t, domain.LanguageEN, p.Language, "client language applies")
	assert.Equal(t, 5, p.Entities)
	require.Len(t, p.Hierarchy, 6)
	assert.Equal(t, "Level", p.Hierarchy[0][0])
	assert.Equal(t, "Tab", p.Hierarchy[1][0])
	assert.Equal(t, "Creative", p.Hierarchy[5][0])

	require.Len(t, p.Summary, 2)
	assert.Contains(t, p.Summary[1], "Search", "advertiser shortcode resolved in English")
	assert.Contains(t, p.Summary[1], 50000.0)

	require.Len(t, p.Breakdown, 3)
	assert.Equal(t, export.BreakdownHeaders[0], p.Breakdown[0][0])
	assert.Equal(t, "mar", p.Breakdown[1][3], "periods are in date order")
	assert.Equal(t, "apr", p.Breakdown[2][3])
}

func TestPreview_LanguageOverride(t *testing.T) {
	store, ref := importedStore(t)
	codes := shortcode.NewCache(store.Shortcodes, time.Minute, nil)

	p, err := NewPreviewService(store, codes, PreviewOptions{}).Preview(context.Background(), ref, domain.LanguageFR)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageFR, p.Language)
	assert.Contains(t, p.Summary[1], "Recherche")
}

func TestPreview_UnknownVersion(t *testing.T) {
	store, ref := importedStore(t)
	ref.VersionID = "missing"

	p, err := NewPreviewService(store, nil, PreviewOptions{}).Preview(context.Background(), ref, "")
	require.NoError(t, err)
	assert.Zero(t, p.Entities)
	assert.Len(t, p.Hierarchy, 1, "header only")
}
