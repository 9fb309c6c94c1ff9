package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/alexanderramin/mediasheet/internal/auth"
	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/sheets"
	"github.com/alexanderramin/mediasheet/internal/testutil"
)

type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}

func exportStore() *testutil.MemoryStore {
	h := testutil.NewHierarchyBuilder().
		Tab("tab-1", "Digital", testutil.WithField("ONGLET_Name", "Digital")).
		Section("tab-1", "sec-1", "Search").
		Build()
	store := testutil.NewMemoryStore(h)
	store.Documents = []domain.Document{{ID: "doc-1", SpreadsheetID: "sheet-1"}}
	return store
}

var serviceRef = domain.VersionRef{ClientID: "client-1", CampaignID: "campaign-1", VersionID: "version-1"}

func TestExportService_ReportsSuccess(t *testing.T) {
	store := exportStore()
	sheet := testutil.NewFakeSheets("MPlan", "Breakdown")
	authorizer := export.AuthorizerFunc(func(context.Context) (sheets.Surface, error) { return sheet, nil })
	obs := &recordingObserver{}
	svc := NewExportService(export.NewOrchestrator(store.Store(), nil, authorizer, export.Options{}), obs)

	res, err := svc.Export(context.Background(), export.Request{Ref: serviceRef, SpreadsheetID: "sheet-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentCompleted, res.Status)
	assert.Equal(t, 2, res.Rows)

	require.Len(t, obs.events, 1)
	ev := obs.events[0]
	assert.Equal(t, "export", ev.Name)
	assert.True(t, ev.Success)
	assert.Equal(t, res.RunID, ev.Fields["run_id"])
	assert.Equal(t, 2, ev.Fields["rows"])
}

func TestExportService_ReportsFailureKind(t *testing.T) {
	store := exportStore()
	authorizer := export.AuthorizerFunc(func(context.Context) (sheets.Surface, error) {
		return nil, auth.ErrConsentBlocked
	})
	obs := &recordingObserver{}
	svc := NewExportService(export.NewOrchestrator(store.Store(), nil, authorizer, export.Options{}), obs)

	res, err := svc.Export(context.Background(), export.Request{Ref: serviceRef, SpreadsheetID: "sheet-1"})
	require.Error(t, err)
	assert.Equal(t, export.FailureAuthorization, res.Failure.Kind)

	require.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
	assert.Equal(t, string(export.FailureAuthorization), obs.events[0].Fields["failure_kind"])
}

type tokenProviderFunc func(ctx context.Context) (oauth2.TokenSource, error)

func (f tokenProviderFunc) TokenSource(ctx context.Context) (oauth2.TokenSource, error) { return f(ctx) }

func TestSheetsAuthorizer(t *testing.T) {
	denied := NewSheetsAuthorizer(tokenProviderFunc(func(context.Context) (oauth2.TokenSource, error) {
		return nil, auth.ErrConsentRequired
	}))
	_, err := denied.Authorize(context.Background())
	assert.ErrorIs(t, err, auth.ErrAuthorization)

	granted := NewSheetsAuthorizer(tokenProviderFunc(func(context.Context) (oauth2.TokenSource, error) {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}), nil
	}))
	surface, err := granted.Authorize(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &sheets.GoogleSurface{}, surface)
}

func TestTabSyncService(t *testing.T) {
	store := exportStore()
	store.Hierarchy.Tabs = append(store.Hierarchy.Tabs, domain.Tab{Entity: domain.Entity{ID: "tab-2", Name: "TV", Order: 5}})
	sheet := testutil.NewFakeSheets("MPlan", "Template")
	authorizer := export.AuthorizerFunc(func(context.Context) (sheets.Surface, error) { return sheet, nil })
	obs := &recordingObserver{}
	svc := NewTabSyncService(store, authorizer, nil, obs)

	res, err := svc.SyncTabs(context.Background(), TabSyncRequest{Ref: serviceRef, SpreadsheetID: "sheet-1", Mode: "creation"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []string{"MPlan", "Digital", "TV"}, sheet.Titles())
	require.Len(t, obs.events, 1)
	assert.Equal(t, 2, obs.events[0].Fields["created"])
}

func TestTabSyncService_Errors(t *testing.T) {
	store := exportStore()
	authorizer := export.AuthorizerFunc(func(context.Context) (sheets.Surface, error) {
		return nil, errors.New("should not be called")
	})
	svc := NewTabSyncService(store, authorizer, nil)

	_, err := svc.SyncTabs(context.Background(), TabSyncRequest{Ref: serviceRef})
	assert.ErrorContains(t, err, "spreadsheet id is required")

	store.Errors["ListTabs"] = errors.New("store offline")
	_, err = svc.SyncTabs(context.Background(), TabSyncRequest{Ref: serviceRef, SpreadsheetID: "sheet-1"})
	assert.ErrorContains(t, err, "listing tabs: store offline")
}
