package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/repository"
	"github.com/alexanderramin/mediasheet/internal/sheets"
	"github.com/alexanderramin/mediasheet/internal/tabsync"
)

// Ranges are the fixed sheet locations an export clears and writes.
type Ranges struct {
	Summary        string `mapstructure:"summary"`
	Hierarchy      string `mapstructure:"hierarchy"`
	Breakdown      string `mapstructure:"breakdown"`
	ClearHierarchy string `mapstructure:"clear_hierarchy"`
	ClearBreakdown string `mapstructure:"clear_breakdown"`
}

func DefaultRanges() Ranges {
	return Ranges{
		Summary:        "MPlan!A1",
		Hierarchy:      "MPlan!A4",
		Breakdown:      "Breakdown!A1",
		ClearHierarchy: "MPlan!A1:ZZ",
		ClearBreakdown: "Breakdown!A1:Z",
	}
}

// Authorizer is the explicit authorization step of an export. It may block
// on user consent and returns a sheet surface bound to the granted access.
type Authorizer interface {
	Authorize(ctx context.Context) (sheets.Surface, error)
}

type AuthorizerFunc func(ctx context.Context) (sheets.Surface, error)

func (f AuthorizerFunc) Authorize(ctx context.Context) (sheets.Surface, error) { return f(ctx) }

// ShortcodeSource returns the id-keyed shortcode table, or nil when it is
// unavailable.
type ShortcodeSource interface {
	Shortcodes(ctx context.Context) map[string]domain.Shortcode
}

// StatusNotifier is told about every document status transition.
type StatusNotifier interface {
	Notify(ctx context.Context, change domain.StatusChange) error
}

type Options struct {
	Ranges       Ranges
	Mapping      *Mapping
	CodeFallback bool
	Logger       *zap.Logger
	Notifier     StatusNotifier
	Now          func() time.Time
}

// Request identifies one export: the version to read and the spreadsheet
// to write. Language overrides the template and client language when set.
type Request struct {
	Ref           domain.VersionRef
	SpreadsheetID string
	Actor         string
	Language      domain.Language
}

// Result describes one export run. Failure is nil on success.
type Result struct {
	RunID         string
	DocumentID    string
	Status        domain.DocumentStatus
	Language      domain.Language
	Rows          int
	BreakdownRows int
	TabSync       *tabsync.Result
	TabSyncErr    error
	Failure       *Failure
	StartedAt     time.Time
	FinishedAt    time.Time
}

type Orchestrator struct {
	store      repository.Store
	shortcodes ShortcodeSource
	authorizer Authorizer
	fetcher    *Fetcher
	opts       Options
	logger     *zap.Logger
}

func NewOrchestrator(store repository.Store, shortcodes ShortcodeSource, authorizer Authorizer, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Mapping == nil {
		opts.Mapping = DefaultMapping()
	}
	if opts.Ranges == (Ranges{}) {
		opts.Ranges = DefaultRanges()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		store:      store,
		shortcodes: shortcodes,
		authorizer: authorizer,
		fetcher:    NewFetcher(store.Hierarchy, store.Breakdowns),
		opts:       opts,
		logger:     opts.Logger,
	}
}

// Run executes one export. Any stage failure aborts the remaining stages,
// marks the document as errored and returns the classified failure both in
// the result and as the error. Ranges cleared before a failure stay cleared.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), StartedAt: o.opts.Now()}
	log := o.logger.With(
		zap.String("run_id", res.RunID),
		zap.String("campaign_id", req.Ref.CampaignID),
		zap.String("version_id", req.Ref.VersionID),
		zap.String("spreadsheet_id", req.SpreadsheetID))

	fail := func(err error) (*Result, error) {
		res.Failure = Classify(err)
		res.Status = domain.DocumentError
		res.FinishedAt = o.opts.Now()
		if res.DocumentID != "" {
			o.setStatus(context.WithoutCancel(ctx), req.Ref, res, domain.DocumentError, res.Failure.Message, log)
		}
		log.Error("export failed", zap.String("kind", string(res.Failure.Kind)), zap.Error(err))
		return res, res.Failure
	}

	if err := req.Ref.Validate(); err != nil {
		return fail(err)
	}
	if req.SpreadsheetID == "" {
		return fail(errors.New("spreadsheet id is required"))
	}

	doc, tmpl, err := o.locate(ctx, req)
	if err != nil {
		return fail(err)
	}
	res.DocumentID = doc.ID
	if res.Language, err = o.language(ctx, req, tmpl); err != nil {
		return fail(err)
	}

	o.setStatus(ctx, req.Ref, res, domain.DocumentAwaitingAuthorization, "", log)
	surface, err := o.authorizer.Authorize(ctx)
	if err != nil {
		return fail(fmt.Errorf("authorizing spreadsheet access: %w", err))
	}
	o.setStatus(ctx, req.Ref, res, domain.DocumentCreating, "", log)

	if tmpl.DuplicateTabs {
		o.syncTabs(ctx, req, surface, res, log)
	}

	r := o.opts.Ranges
	for _, rng := range []string{r.ClearHierarchy, r.ClearBreakdown} {
		if err := surface.ClearRange(ctx, req.SpreadsheetID, rng); err != nil {
			return fail(fmt.Errorf("clearing %s: %w", rng, err))
		}
	}

	h, err := o.fetcher.Fetch(ctx, req.Ref)
	if err != nil {
		return fail(fmt.Errorf("fetching hierarchy: %w", err))
	}
	table, err := Flatten(h, o.opts.Mapping)
	if err != nil {
		return fail(fmt.Errorf("flattening hierarchy: %w", err))
	}
	rows := FlattenBreakdowns(h, log)
	campaign, err := o.store.Campaigns.GetCampaign(ctx, req.Ref.ClientID, req.Ref.CampaignID)
	if err != nil {
		return fail(fmt.Errorf("loading campaign: %w", err))
	}

	var codes map[string]domain.Shortcode
	if o.shortcodes != nil {
		codes = o.shortcodes.Shortcodes(ctx)
	}
	resolver := NewResolver(codes, res.Language, log, WithCodeFallback(o.opts.CodeFallback))
	writes := []pendingWrite{
		{rng: r.Summary, values: resolver.Resolve(Summary(campaign, o.opts.Mapping.Summary))},
		{rng: r.Hierarchy, values: resolver.Resolve(Values(table))},
		{rng: r.Breakdown, values: BreakdownTable(rows)},
	}
	if err := writeAll(ctx, surface, req.SpreadsheetID, writes); err != nil {
		return fail(err)
	}
	res.Rows = len(table) - 1
	res.BreakdownRows = len(rows)

	at := o.opts.Now()
	if err := o.store.Documents.RecordDataSync(ctx, req.Ref, doc.ID, at, req.Actor); err != nil {
		return fail(fmt.Errorf("recording data sync: %w", err))
	}
	res.Status = domain.DocumentCompleted
	res.FinishedAt = at
	o.setStatus(ctx, req.Ref, res, domain.DocumentCompleted, "", log)

	log.Info("export completed",
		zap.Int("rows", res.Rows),
		zap.Int("breakdown_rows", res.BreakdownRows),
		zap.Duration("duration", res.FinishedAt.Sub(res.StartedAt)))
	return res, nil
}

// locate finds the document targeting the spreadsheet and its template. A
// document without a template, or whose template was removed, exports with
// tab sync disabled.
func (o *Orchestrator) locate(ctx context.Context, req Request) (*domain.Document, *domain.Template, error) {
	docs, err := o.store.Documents.ListByVersion(ctx, req.Ref)
	if err != nil {
		return nil, nil, fmt.Errorf("listing documents: %w", err)
	}
	var doc *domain.Document
	for i := range docs {
		if docs[i].SpreadsheetID == req.SpreadsheetID {
			doc = &docs[i]
			break
		}
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoDocument, req.SpreadsheetID)
	}

	tmpl := &domain.Template{}
	if doc.TemplateID == "" {
		return doc, tmpl, nil
	}
	found, err := o.store.Templates.GetTemplate(ctx, req.Ref.ClientID, doc.TemplateID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		o.logger.Warn("document template not found, skipping tab sync",
			zap.String("document_id", doc.ID),
			zap.String("template_id", doc.TemplateID))
		return doc, tmpl, nil
	case err != nil:
		return nil, nil, fmt.Errorf("loading template %s: %w", doc.TemplateID, err)
	}
	return doc, found, nil
}

// language resolves the export language: request, template, client, FR.
func (o *Orchestrator) language(ctx context.Context, req Request, tmpl *domain.Template) (domain.Language, error) {
	if req.Language != "" {
		return req.Language, nil
	}
	if tmpl.Language != "" {
		return tmpl.Language, nil
	}
	client, err := o.store.Clients.GetClientInfo(ctx, req.Ref.ClientID)
	if err != nil {
		return "", fmt.Errorf("loading client settings: %w", err)
	}
	return domain.CoalesceLanguage(client.ExportLanguage), nil
}

// syncTabs mirrors the hierarchy tabs into the spreadsheet. Failures are
// recorded on the result and the export continues.
func (o *Orchestrator) syncTabs(ctx context.Context, req Request, surface sheets.Surface, res *Result, log *zap.Logger) {
	tabs, err := o.store.Hierarchy.ListTabs(ctx, req.Ref)
	if err == nil {
		var sr tabsync.Result
		sr, err = tabsync.New(surface, log).Sync(ctx, req.SpreadsheetID, OrderedTabs(tabs), tabsync.ModeAuto)
		res.TabSync = &sr
	}
	if err != nil {
		res.TabSyncErr = err
		log.Warn("tab sync failed, continuing export", zap.Error(err))
	}
}

func (o *Orchestrator) setStatus(ctx context.Context, ref domain.VersionRef, res *Result, status domain.DocumentStatus, msg string, log *zap.Logger) {
	if err := o.store.Documents.UpdateStatus(ctx, ref, res.DocumentID, status, msg); err != nil {
		log.Warn("updating document status failed", zap.String("status", string(status)), zap.Error(err))
	}
	if o.opts.Notifier == nil {
		return
	}
	change := domain.StatusChange{
		Ref:        ref,
		DocumentID: res.DocumentID,
		RunID:      res.RunID,
		Status:     status,
		Message:    msg,
		At:         o.opts.Now(),
	}
	if err := o.opts.Notifier.Notify(ctx, change); err != nil {
		log.Warn("publishing status change failed", zap.String("status", string(status)), zap.Error(err))
	}
}

type pendingWrite struct {
	rng    string
	values [][]any
}

// writeAll issues the writes concurrently and waits for all of them. When
// some land and others fail the error wraps ErrPartialWrite.
func writeAll(ctx context.Context, surface sheets.Surface, spreadsheetID string, writes []pendingWrite) error {
	var g errgroup.Group
	errs := make([]error, len(writes))
	for i, w := range writes {
		g.Go(func() error {
			errs[i] = surface.WriteValues(ctx, spreadsheetID, w.rng, w.values)
			if errs[i] != nil {
				return fmt.Errorf("writing %s: %w", w.rng, errs[i])
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		return nil
	}
	landed := 0
	for _, e := range errs {
		if e == nil {
			landed++
		}
	}
	if landed > 0 {
		return fmt.Errorf("%w: %d of %d writes landed: %w", ErrPartialWrite, landed, len(writes), err)
	}
	return err
}
