// Package tabsync reconciles the tabs of a spreadsheet with the tabs of a
// campaign hierarchy. Each spreadsheet tab records the hierarchy tab it
// mirrors in its B1 cell.
package tabsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/sheets"
)

// TemplateTitle is the name of the tab duplicated in creation mode.
const TemplateTitle = "Template"

// TagCell holds the hierarchy tab id of a spreadsheet tab.
const TagCell = "B1"

var (
	ErrNoTemplate = errors.New("spreadsheet has no \"Template\" tab")
	ErrNoSource   = errors.New("spreadsheet has no tab to duplicate")
)

type Mode string

const (
	// ModeAuto picks creation when a Template tab exists, refresh otherwise.
	ModeAuto     Mode = "auto"
	ModeCreation Mode = "creation"
	ModeRefresh  Mode = "refresh"
)

// ParseMode accepts "auto", "creation" or "refresh"; empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeCreation:
		return ModeCreation, nil
	case ModeRefresh:
		return ModeRefresh, nil
	}
	return "", fmt.Errorf("unknown tab sync mode %q (expected auto, creation or refresh)", s)
}

// Result counts the structural changes made by one run.
type Result struct {
	Mode    Mode
	Created int
	Renamed int
	Deleted int
	Tagged  int
}

// Changed reports whether the run modified the spreadsheet.
func (r Result) Changed() bool {
	return r.Created+r.Renamed+r.Deleted+r.Tagged > 0
}

// Synchronizer issues its calls one at a time because tab indices shift
// after every structural change.
type Synchronizer struct {
	surface sheets.Surface
	logger  *zap.Logger
}

func New(surface sheets.Surface, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{surface: surface, logger: logger}
}

// run is the live state of one synchronization.
type run struct {
	*Synchronizer
	spreadsheetID string
	live          []sheets.Tab
	tags          map[int64]string
	byID          map[string]int64
	result        Result
}

// Sync brings the spreadsheet's tabs in line with tabs, which must already
// be in hierarchy order. Any failed call aborts the run; the partial result
// is returned with the error.
func (s *Synchronizer) Sync(ctx context.Context, spreadsheetID string, tabs []domain.Tab, mode Mode) (Result, error) {
	live, err := s.surface.ListTabs(ctx, spreadsheetID)
	if err != nil {
		return Result{Mode: mode}, fmt.Errorf("listing spreadsheet tabs: %w", err)
	}
	r := &run{Synchronizer: s, spreadsheetID: spreadsheetID, live: live}

	if mode == ModeAuto {
		mode = ModeRefresh
		if _, ok := r.find(TemplateTitle); ok {
			mode = ModeCreation
		}
	}
	r.result.Mode = mode

	switch mode {
	case ModeCreation:
		err = r.creation(ctx, tabs)
	case ModeRefresh:
		err = r.refresh(ctx, tabs)
	default:
		err = fmt.Errorf("unknown tab sync mode %q", mode)
	}
	s.logger.Info("tab sync finished",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("mode", string(mode)),
		zap.Int("created", r.result.Created),
		zap.Int("renamed", r.result.Renamed),
		zap.Int("deleted", r.result.Deleted),
		zap.Int("tagged", r.result.Tagged),
		zap.Error(err))
	return r.result, err
}

// creation duplicates the template once per tab, right after the template,
// then deletes the template. Tabs tagged by an earlier interrupted run are
// reused instead of duplicated again.
func (r *run) creation(ctx context.Context, tabs []domain.Tab) error {
	template, ok := r.find(TemplateTitle)
	if !ok {
		return ErrNoTemplate
	}
	if err := r.readTags(ctx, template.SheetID); err != nil {
		return err
	}

	insertAt := template.Index + 1
	for _, tab := range tabs {
		created, err := r.reconcile(ctx, tab, template, insertAt)
		if err != nil {
			return err
		}
		if created {
			insertAt++
		}
	}

	if len(r.live) <= 1 {
		r.logger.Warn("keeping template tab, it is the only tab left",
			zap.String("spreadsheet_id", r.spreadsheetID))
		return nil
	}
	if _, err := r.surface.BatchUpdate(ctx, r.spreadsheetID, []sheets.TabOp{sheets.Delete(template.SheetID)}); err != nil {
		return fmt.Errorf("deleting template tab: %w", err)
	}
	r.remove(template.SheetID)
	r.result.Deleted++
	return nil
}

// refresh renames tagged tabs whose title changed and creates tabs for new
// hierarchy tabs. Tabs missing from the hierarchy are left alone.
func (r *run) refresh(ctx context.Context, tabs []domain.Tab) error {
	if err := r.readTags(ctx, -1); err != nil {
		return err
	}
	for _, tab := range tabs {
		source, ok := r.find(TemplateTitle)
		if !ok {
			if len(r.live) == 0 {
				return ErrNoSource
			}
			source = r.live[len(r.live)-1]
		}
		if _, err := r.reconcile(ctx, tab, source, len(r.live)); err != nil {
			return err
		}
	}
	return nil
}

// reconcile makes one spreadsheet tab mirror tab. It reports whether a new
// tab was created.
func (r *run) reconcile(ctx context.Context, tab domain.Tab, source sheets.Tab, insertAt int) (bool, error) {
	title := tabTitle(tab)

	if sheetID, ok := r.byID[tab.ID]; ok {
		current := r.byIDTab(sheetID)
		if current.Title == title {
			return false, nil
		}
		if _, err := r.surface.BatchUpdate(ctx, r.spreadsheetID, []sheets.TabOp{sheets.Rename(sheetID, title)}); err != nil {
			return false, fmt.Errorf("renaming tab %q to %q: %w", current.Title, title, err)
		}
		r.setTitle(sheetID, title)
		r.result.Renamed++
		return false, nil
	}

	if existing, ok := r.find(title); ok && r.tags[existing.SheetID] == "" && existing.Title != TemplateTitle {
		if err := r.tag(ctx, existing, tab.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	replies, err := r.surface.BatchUpdate(ctx, r.spreadsheetID, []sheets.TabOp{sheets.Duplicate(source.SheetID, insertAt, title)})
	if err != nil {
		return false, fmt.Errorf("duplicating tab %q as %q: %w", source.Title, title, err)
	}
	created := sheets.Tab{Title: title, Index: insertAt}
	if len(replies) > 0 && replies[0].Title != "" {
		created = replies[0]
	}
	r.insert(created)
	r.result.Created++
	if err := r.tag(ctx, created, tab.ID); err != nil {
		r.untag(ctx, created, source)
		return true, err
	}
	return true, nil
}

// untag blanks the tag cell a duplicate copied from its source so a later
// run does not match the copy to the source's hierarchy tab.
func (r *run) untag(ctx context.Context, t, source sheets.Tab) {
	rng := sheets.CellRange(t.Title, TagCell)
	if err := r.surface.ClearRange(ctx, r.spreadsheetID, rng); err != nil {
		r.logger.Warn("duplicated tab may still carry the source tag",
			zap.String("tab", t.Title),
			zap.String("source", source.Title),
			zap.Error(err))
		return
	}
	r.logger.Warn("cleared copied tag of untagged duplicate",
		zap.String("tab", t.Title),
		zap.String("source", source.Title))
}

func (r *run) tag(ctx context.Context, t sheets.Tab, tabID string) error {
	rng := sheets.CellRange(t.Title, TagCell)
	if err := r.surface.WriteValues(ctx, r.spreadsheetID, rng, [][]any{{tabID}}); err != nil {
		return fmt.Errorf("tagging tab %q: %w", t.Title, err)
	}
	r.tags[t.SheetID] = tabID
	r.byID[tabID] = t.SheetID
	r.result.Tagged++
	return nil
}

// readTags reads the tag cell of every live tab except skip.
func (r *run) readTags(ctx context.Context, skip int64) error {
	r.tags = make(map[int64]string, len(r.live))
	r.byID = make(map[string]int64, len(r.live))
	for _, t := range r.live {
		if t.SheetID == skip {
			continue
		}
		values, err := r.surface.ReadValues(ctx, r.spreadsheetID, sheets.CellRange(t.Title, TagCell))
		if err != nil {
			return fmt.Errorf("reading tag of tab %q: %w", t.Title, err)
		}
		id := cellText(values)
		if id == "" {
			continue
		}
		if prev, dup := r.byID[id]; dup {
			r.logger.Warn("tab id tagged on more than one tab, keeping the first",
				zap.String("tab_id", id),
				zap.Int64("kept_sheet_id", prev),
				zap.Int64("ignored_sheet_id", t.SheetID))
			continue
		}
		r.tags[t.SheetID] = id
		r.byID[id] = t.SheetID
	}
	return nil
}

func (r *run) find(title string) (sheets.Tab, bool) {
	for _, t := range r.live {
		if t.Title == title {
			return t, true
		}
	}
	return sheets.Tab{}, false
}

func (r *run) byIDTab(sheetID int64) sheets.Tab {
	for _, t := range r.live {
		if t.SheetID == sheetID {
			return t
		}
	}
	return sheets.Tab{}
}

func (r *run) setTitle(sheetID int64, title string) {
	for i := range r.live {
		if r.live[i].SheetID == sheetID {
			r.live[i].Title = title
		}
	}
}

func (r *run) insert(t sheets.Tab) {
	at := min(max(t.Index, 0), len(r.live))
	r.live = append(r.live[:at], append([]sheets.Tab{t}, r.live[at:]...)...)
	for i := range r.live {
		r.live[i].Index = i
	}
}

func (r *run) remove(sheetID int64) {
	for i, t := range r.live {
		if t.SheetID == sheetID {
			r.live = append(r.live[:i], r.live[i+1:]...)
			break
		}
	}
	for i := range r.live {
		r.live[i].Index = i
	}
}

// tabTitle falls back to the id for unnamed tabs; the Sheets API rejects
// empty titles.
func tabTitle(tab domain.Tab) string {
	return domain.CoalesceStr(strings.TrimSpace(tab.Name), tab.ID)
}

func cellText(values [][]any) string {
	if len(values) == 0 || len(values[0]) == 0 || values[0][0] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(values[0][0]))
}
