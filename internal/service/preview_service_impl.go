package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/repository"
)

type previewService struct {
	store        repository.Store
	shortcodes   export.ShortcodeSource
	mapping      *export.Mapping
	codeFallback bool
	logger       *zap.Logger
	observer     UseCaseObserver
}

// PreviewOptions mirror the export options that shape the tables.
type PreviewOptions struct {
	Mapping      *export.Mapping
	CodeFallback bool
	Logger       *zap.Logger
}

func NewPreviewService(store repository.Store, shortcodes export.ShortcodeSource, opts PreviewOptions, observers ...UseCaseObserver) PreviewService {
	if opts.Mapping == nil {
		opts.Mapping = export.DefaultMapping()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &previewService{
		store:        store,
		shortcodes:   shortcodes,
		mapping:      opts.Mapping,
		codeFallback: opts.CodeFallback,
		logger:       opts.Logger,
		observer:     useCaseObserverOrNoop(observers),
	}
}

// Preview builds the three export tables without touching a spreadsheet.
// The language falls back to the client's export language.
func (s *previewService) Preview(ctx context.Context, ref domain.VersionRef, lang domain.Language) (p *Preview, err error) {
	fields := map[string]any{"campaign_id": ref.CampaignID, "version_id": ref.VersionID}
	defer observe(ctx, s.observer, "preview", time.Now().UTC(), fields, &err)

	if lang == "" {
		client, err := s.store.Clients.GetClientInfo(ctx, ref.ClientID)
		if err != nil {
			return nil, fmt.Errorf("loading client settings: %w", err)
		}
		lang = client.ExportLanguage
	}
	lang = domain.CoalesceLanguage(lang)

	h, err := export.NewFetcher(s.store.Hierarchy, s.store.Breakdowns).Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching hierarchy: %w", err)
	}
	table, err := export.Flatten(h, s.mapping)
	if err != nil {
		return nil, fmt.Errorf("flattening hierarchy: %w", err)
	}
	rows := export.FlattenBreakdowns(h, s.logger)
	campaign, err := s.store.Campaigns.GetCampaign(ctx, ref.ClientID, ref.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("loading campaign: %w", err)
	}

	var codes map[string]domain.Shortcode
	if s.shortcodes != nil {
		codes = s.shortcodes.Shortcodes(ctx)
	}
	resolver := export.NewResolver(codes, lang, s.logger, export.WithCodeFallback(s.codeFallback))

	p = &Preview{
		Language:   lang,
		Summary:    resolver.Resolve(export.Summary(campaign, s.mapping.Summary)),
		Hierarchy:  resolver.Resolve(export.Values(table)),
		Breakdown:  export.BreakdownTable(rows),
		Entities:   h.EntityCount(),
		Breakdowns: len(rows),
		Snapshot:   h,
	}
	fields["entities"] = p.Entities
	return p, nil
}
