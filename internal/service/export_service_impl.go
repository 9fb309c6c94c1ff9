package service

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/sheets"
)

// TokenProvider yields an OAuth token source, running the consent step when
// no cached token is available. *auth.Authorizer implements it.
type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// SheetsAuthorizer turns granted access into a Google Sheets surface.
type SheetsAuthorizer struct {
	tokens TokenProvider
	opts   []option.ClientOption
}

func NewSheetsAuthorizer(tokens TokenProvider, opts ...option.ClientOption) *SheetsAuthorizer {
	return &SheetsAuthorizer{tokens: tokens, opts: opts}
}

func (a *SheetsAuthorizer) Authorize(ctx context.Context) (sheets.Surface, error) {
	ts, err := a.tokens.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return sheets.NewGoogleSurface(ctx, ts, a.opts...)
}

type exportService struct {
	orchestrator *export.Orchestrator
	observer     UseCaseObserver
}

func NewExportService(orchestrator *export.Orchestrator, observers ...UseCaseObserver) ExportService {
	return &exportService{orchestrator: orchestrator, observer: useCaseObserverOrNoop(observers)}
}

func (s *exportService) Export(ctx context.Context, req export.Request) (res *export.Result, err error) {
	fields := map[string]any{
		"campaign_id":    req.Ref.CampaignID,
		"version_id":     req.Ref.VersionID,
		"spreadsheet_id": req.SpreadsheetID,
	}
	defer observe(ctx, s.observer, "export", time.Now().UTC(), fields, &err)

	res, err = s.orchestrator.Run(ctx, req)
	if res != nil {
		fields["run_id"] = res.RunID
		fields["rows"] = res.Rows
		fields["breakdown_rows"] = res.BreakdownRows
		if res.Failure != nil {
			fields["failure_kind"] = string(res.Failure.Kind)
		}
	}
	return res, err
}
