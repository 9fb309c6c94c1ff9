package service

import (
	"context"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/importer"
	"github.com/alexanderramin/mediasheet/internal/tabsync"
)

type ExportService interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

// TabSyncRequest runs the tab synchronizer alone, without writing data.
type TabSyncRequest struct {
	Ref           domain.VersionRef
	SpreadsheetID string
	Mode          tabsync.Mode
}

type TabSyncService interface {
	SyncTabs(ctx context.Context, req TabSyncRequest) (tabsync.Result, error)
}

// Preview holds the tables an export would write, before sheet access.
type Preview struct {
	Language   domain.Language
	Summary    [][]any
	Hierarchy  [][]any
	Breakdown  [][]any
	Entities   int
	Breakdowns int
	Snapshot   *domain.Hierarchy
}

type PreviewService interface {
	Preview(ctx context.Context, ref domain.VersionRef, lang domain.Language) (*Preview, error)
}

// ImportResult holds the outcome of a snapshot import.
type ImportResult struct {
	Ref            domain.VersionRef
	EntityCount    int
	BreakdownCount int
	ShortcodeCount int
	TemplateCount  int
	DocumentCount  int
	ClientCreated  bool
	CampaignAdded  bool
}

type ImportService interface {
	ImportSnapshot(ctx context.Context, filePath string) (*ImportResult, error)
	ImportSnapshotFromSchema(ctx context.Context, schema *importer.SnapshotSchema) (*ImportResult, error)
}
