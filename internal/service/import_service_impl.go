package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/mediasheet/internal/db"
	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/importer"
	"github.com/alexanderramin/mediasheet/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewImportService writes snapshots into the local store. Every snapshot is
// written in one transaction.
func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportSnapshot(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadSnapshotSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportSnapshotFromSchema(ctx, schema)
}

func (s *importService) ImportSnapshotFromSchema(ctx context.Context, schema *importer.SnapshotSchema) (res *ImportResult, err error) {
	fields := map[string]any{"campaign_id": schema.Campaign.ID}
	defer observe(ctx, s.observer, "import-snapshot", time.Now().UTC(), fields, &err)

	if errs := importer.ValidateSnapshotSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	snap, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting snapshot: %w", err)
	}

	res = &ImportResult{
		Ref:            snap.Ref,
		EntityCount:    snap.Hierarchy.EntityCount(),
		ShortcodeCount: len(snap.Shortcodes),
		DocumentCount:  len(snap.Documents),
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return writeSnapshot(ctx, tx, snap, res)
	})
	if err != nil {
		return nil, err
	}
	fields["version_id"] = res.Ref.VersionID
	fields["entities"] = res.EntityCount
	return res, nil
}

// writeSnapshot adds the version to the store. The client, campaign,
// breakdown definitions and templates are created only when missing so a
// second version of a known campaign can be imported.
func writeSnapshot(ctx context.Context, tx db.DBTX, snap *importer.Snapshot, res *ImportResult) error {
	campaigns := repository.NewSQLiteCampaignRepo(tx)
	hierarchy := repository.NewSQLiteHierarchyRepo(tx)
	shortcodes := repository.NewSQLiteShortcodeRepo(tx)
	documents := repository.NewSQLiteDocumentRepo(tx)
	ref := snap.Ref

	_, err := campaigns.GetClientInfo(ctx, ref.ClientID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err := campaigns.CreateClient(ctx, snap.Client); err != nil {
			return fmt.Errorf("creating client: %w", err)
		}
		res.ClientCreated = true
	case err != nil:
		return fmt.Errorf("checking client: %w", err)
	}

	_, err = campaigns.GetCampaign(ctx, ref.ClientID, ref.CampaignID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err := campaigns.CreateCampaign(ctx, ref.ClientID, snap.Campaign); err != nil {
			return fmt.Errorf("creating campaign: %w", err)
		}
		res.CampaignAdded = true
	case err != nil:
		return fmt.Errorf("checking campaign: %w", err)
	}

	if err := campaigns.CreateVersion(ctx, ref.CampaignID, ref.VersionID, snap.VersionName); err != nil {
		return fmt.Errorf("creating version: %w", err)
	}

	existing, err := campaigns.ListBreakdownDefinitions(ctx, ref.ClientID, ref.CampaignID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, b := range existing {
		known[b.ID] = true
	}
	for _, b := range snap.Hierarchy.BreakdownDefinitions {
		if known[b.ID] {
			continue
		}
		if err := campaigns.CreateBreakdownDefinition(ctx, ref.CampaignID, b); err != nil {
			return fmt.Errorf("creating breakdown %q: %w", b.ID, err)
		}
		res.BreakdownCount++
	}

	if err := writeHierarchy(ctx, hierarchy, ref.VersionID, snap.Hierarchy); err != nil {
		return err
	}

	for _, sc := range snap.Shortcodes {
		if err := shortcodes.Upsert(ctx, sc); err != nil {
			return err
		}
	}

	for _, t := range snap.Templates {
		_, err := campaigns.GetTemplate(ctx, ref.ClientID, t.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("checking template %q: %w", t.ID, err)
		}
		if err := campaigns.CreateTemplate(ctx, ref.ClientID, t); err != nil {
			return fmt.Errorf("creating template %q: %w", t.ID, err)
		}
		res.TemplateCount++
	}

	for i := range snap.Documents {
		if err := documents.Create(ctx, ref.VersionID, &snap.Documents[i]); err != nil {
			return fmt.Errorf("creating document %q: %w", snap.Documents[i].Name, err)
		}
	}
	return nil
}

func writeHierarchy(ctx context.Context, repo *repository.SQLiteHierarchyRepo, versionID string, h *domain.Hierarchy) error {
	for _, tab := range h.Tabs {
		if err := repo.CreateTab(ctx, versionID, tab); err != nil {
			return fmt.Errorf("creating tab %q: %w", tab.Name, err)
		}
		for _, sec := range h.Sections[tab.ID] {
			if err := repo.CreateSection(ctx, sec); err != nil {
				return fmt.Errorf("creating section %q: %w", sec.Name, err)
			}
			for _, tc := range h.Tactics[sec.ID] {
				if err := repo.CreateTactic(ctx, tc); err != nil {
					return fmt.Errorf("creating tactic %q: %w", tc.Name, err)
				}
				for _, pl := range h.Placements[tc.ID] {
					if err := repo.CreatePlacement(ctx, pl); err != nil {
						return fmt.Errorf("creating placement %q: %w", pl.Name, err)
					}
					for _, cr := range h.Creatives[pl.ID] {
						if err := repo.CreateCreative(ctx, cr); err != nil {
							return fmt.Errorf("creating creative %q: %w", cr.Name, err)
						}
					}
				}
			}
		}
	}
	return nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
