package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mediasheet/internal/auth"
	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/service"
	"github.com/alexanderramin/mediasheet/internal/tabsync"
)

type fakeExports struct {
	got  export.Request
	res  *export.Result
	err  error
	boom bool
}

func (f *fakeExports) Export(_ context.Context, req export.Request) (*export.Result, error) {
	if f.boom {
		panic("exploded")
	}
	f.got = req
	return f.res, f.err
}

type fakeTabs struct {
	got service.TabSyncRequest
	res tabsync.Result
	err error
}

func (f *fakeTabs) SyncTabs(_ context.Context, req service.TabSyncRequest) (tabsync.Result, error) {
	f.got = req
	return f.res, f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const exportPath = "/clients/c1/campaigns/cp1/versions/v1/exports"

func TestHealth(t *testing.T) {
	rec := do(t, NewServer(&fakeExports{}, &fakeTabs{}, nil).Handler(nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPostExport_Success(t *testing.T) {
	exports := &fakeExports{res: &export.Result{
		RunID: "run-1", DocumentID: "doc-1", Status: domain.DocumentCompleted,
		Language: domain.LanguageEN, Rows: 4, BreakdownRows: 2,
		TabSync: &tabsync.Result{Mode: tabsync.ModeRefresh, Created: 1},
	}}
	var access bytes.Buffer
	h := NewServer(exports, &fakeTabs{}, nil).Handler(&access)

	rec := do(t, h, http.MethodPost, exportPath, `{"spreadsheetId":"sheet-1","actor":"ana","language":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, domain.VersionRef{ClientID: "c1", CampaignID: "cp1", VersionID: "v1"}, exports.got.Ref)
	assert.Equal(t, "sheet-1", exports.got.SpreadsheetID)
	assert.Equal(t, domain.LanguageEN, exports.got.Language)

	var body exportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "completed", body.Status)
	assert.Equal(t, 4, body.Rows)
	require.NotNil(t, body.TabSync)
	assert.Equal(t, 1, body.TabSync.Created)
	assert.Nil(t, body.Failure)

	assert.Contains(t, access.String(), "POST "+exportPath)
}

func TestPostExport_FailureStatusCodes(t *testing.T) {
	tests := []struct {
		kind export.FailureKind
		want int
	}{
		{export.FailureAuthorization, http.StatusUnauthorized},
		{export.FailurePermission, http.StatusForbidden},
		{export.FailureNotFound, http.StatusNotFound},
		{export.FailureIntegrity, http.StatusUnprocessableEntity},
		{export.FailurePartialWrite, http.StatusBadGateway},
		{export.FailureInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := &export.Failure{Kind: tt.kind, Message: "nope"}
			exports := &fakeExports{res: &export.Result{RunID: "r", Status: domain.DocumentError, Failure: f}, err: f}

			rec := do(t, NewServer(exports, &fakeTabs{}, nil).Handler(nil), http.MethodPost, exportPath, `{"spreadsheetId":"s"}`)
			assert.Equal(t, tt.want, rec.Code)

			var body exportResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotNil(t, body.Failure)
			assert.Equal(t, string(tt.kind), body.Failure.Kind)
			assert.Equal(t, "nope", body.Failure.Message)
		})
	}
}

func TestPostExport_BadRequests(t *testing.T) {
	h := NewServer(&fakeExports{}, &fakeTabs{}, nil).Handler(nil)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, exportPath, `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, exportPath, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, exportPath, `{"spreadsheetId":"s","language":"de"}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, exportPath, "").Code)
}

func TestPostExport_RecoversFromPanic(t *testing.T) {
	h := NewServer(&fakeExports{boom: true}, &fakeTabs{}, nil).Handler(nil)
	rec := do(t, h, http.MethodPost, exportPath, `{"spreadsheetId":"s"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPostTabSync(t *testing.T) {
	tabs := &fakeTabs{res: tabsync.Result{Mode: tabsync.ModeCreation, Created: 3, Deleted: 1}}
	h := NewServer(&fakeExports{}, tabs, nil).Handler(nil)

	rec := do(t, h, http.MethodPost, "/clients/c1/campaigns/cp1/versions/v1/tab-sync", `{"spreadsheetId":"s","mode":"creation"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tabsync.ModeCreation, tabs.got.Mode)
	assert.Contains(t, rec.Body.String(), `"created":3`)

	assert.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPost, "/clients/c1/campaigns/cp1/versions/v1/tab-sync", `{"spreadsheetId":"s","mode":"mirror"}`).Code)
}

func TestPostTabSync_Failures(t *testing.T) {
	tabs := &fakeTabs{err: tabsync.ErrNoTemplate}
	h := NewServer(&fakeExports{}, tabs, nil).Handler(nil)
	path := "/clients/c1/campaigns/cp1/versions/v1/tab-sync"

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, path, `{"spreadsheetId":"s"}`).Code)

	tabs.err = errors.Join(errors.New("authorizing"), auth.ErrConsentRequired)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, path, `{"spreadsheetId":"s"}`).Code)
}
