package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// HierarchyReader lists one level of a campaign version's hierarchy. Child
// collections are addressed by the full chain of ancestor ids because the
// production store nests them under their parents.
type HierarchyReader interface {
	ListTabs(ctx context.Context, ref domain.VersionRef) ([]domain.Tab, error)
	ListSections(ctx context.Context, ref domain.VersionRef, tabID string) ([]domain.Section, error)
	ListTactics(ctx context.Context, ref domain.VersionRef, tabID, sectionID string) ([]domain.Tactic, error)
	ListPlacements(ctx context.Context, ref domain.VersionRef, tabID, sectionID, tacticID string) ([]domain.Placement, error)
	ListCreatives(ctx context.Context, ref domain.VersionRef, tabID, sectionID, tacticID, placementID string) ([]domain.Creative, error)
}

type BreakdownReader interface {
	ListBreakdownDefinitions(ctx context.Context, clientID, campaignID string) ([]domain.BreakdownDefinition, error)
}

type CampaignReader interface {
	GetCampaign(ctx context.Context, clientID, campaignID string) (*domain.Campaign, error)
}

type ShortcodeReader interface {
	ListShortcodes(ctx context.Context) ([]domain.Shortcode, error)
}

type ClientReader interface {
	GetClientInfo(ctx context.Context, clientID string) (*domain.ClientInfo, error)
}

type TemplateReader interface {
	GetTemplate(ctx context.Context, clientID, templateID string) (*domain.Template, error)
}

// DocumentRepo exposes the documents of a version and the only writes the
// export pipeline performs: its own status and data-sync records.
type DocumentRepo interface {
	ListByVersion(ctx context.Context, ref domain.VersionRef) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, ref domain.VersionRef, documentID string, status domain.DocumentStatus, message string) error
	RecordDataSync(ctx context.Context, ref domain.VersionRef, documentID string, at time.Time, actor string) error
}

// Store bundles every reader the export pipeline needs from one backend.
type Store struct {
	Hierarchy  HierarchyReader
	Breakdowns BreakdownReader
	Campaigns  CampaignReader
	Shortcodes ShortcodeReader
	Clients    ClientReader
	Templates  TemplateReader
	Documents  DocumentRepo
}
