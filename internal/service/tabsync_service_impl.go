package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/repository"
	"github.com/alexanderramin/mediasheet/internal/tabsync"
)

type tabSyncService struct {
	hierarchy  repository.HierarchyReader
	authorizer export.Authorizer
	logger     *zap.Logger
	observer   UseCaseObserver
}

func NewTabSyncService(hierarchy repository.HierarchyReader, authorizer export.Authorizer, logger *zap.Logger, observers ...UseCaseObserver) TabSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tabSyncService{
		hierarchy:  hierarchy,
		authorizer: authorizer,
		logger:     logger,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *tabSyncService) SyncTabs(ctx context.Context, req TabSyncRequest) (res tabsync.Result, err error) {
	fields := map[string]any{
		"spreadsheet_id": req.SpreadsheetID,
		"mode":           string(req.Mode),
	}
	defer observe(ctx, s.observer, "sync-tabs", time.Now().UTC(), fields, &err)

	if err = req.Ref.Validate(); err != nil {
		return res, err
	}
	if req.SpreadsheetID == "" {
		return res, errors.New("spreadsheet id is required")
	}

	tabs, err := s.hierarchy.ListTabs(ctx, req.Ref)
	if err != nil {
		return res, fmt.Errorf("listing tabs: %w", err)
	}
	surface, err := s.authorizer.Authorize(ctx)
	if err != nil {
		return res, fmt.Errorf("authorizing spreadsheet access: %w", err)
	}

	res, err = tabsync.New(surface, s.logger).Sync(ctx, req.SpreadsheetID, export.OrderedTabs(tabs), req.Mode)
	fields["created"] = res.Created
	fields["renamed"] = res.Renamed
	fields["deleted"] = res.Deleted
	return res, err
}
