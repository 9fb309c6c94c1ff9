package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/service"
	"github.com/alexanderramin/mediasheet/internal/tabsync"
)

// previewRowLimit caps the hierarchy rows shown by FormatPreview.
const previewRowLimit = 20

// FormatExportResult renders the outcome of one export run.
func FormatExportResult(res *export.Result) string {
	if res == nil {
		return ""
	}
	var lines []string
	lines = append(lines, kv("Status", StatusIndicator(res.Status)))
	if res.DocumentID != "" {
		lines = append(lines, kv("Document", res.DocumentID))
	}
	if res.Language != "" {
		lines = append(lines, kv("Language", string(res.Language)))
	}
	lines = append(lines,
		kv("Hierarchy", pluralize(res.Rows, "row", "rows")),
		kv("Breakdown", pluralize(res.BreakdownRows, "row", "rows")),
	)
	if res.TabSync != nil {
		lines = append(lines, kv("Tabs", tabSyncSummary(*res.TabSync)))
	}
	if res.TabSyncErr != nil {
		lines = append(lines, kv("Tabs", StyleYellow.Render("not synchronized: "+res.TabSyncErr.Error())))
	}
	if !res.FinishedAt.IsZero() {
		lines = append(lines, kv("Elapsed", Elapsed(res.FinishedAt.Sub(res.StartedAt))))
	}
	lines = append(lines, kv("Run", Dim(res.RunID)))
	if f := res.Failure; f != nil {
		lines = append(lines, "", FailureStyle(f.Kind).Render(fmt.Sprintf("✗ %s: %s", f.Kind, f.Message)))
		if f.Kind == export.FailureAuthorization {
			lines = append(lines, Dim("Run `mediasheet auth login` and retry."))
		}
	}
	return RenderBox("Export", strings.Join(lines, "\n"))
}

func tabSyncSummary(r tabsync.Result) string {
	if !r.Changed() {
		return fmt.Sprintf("%s, no changes", r.Mode)
	}
	var parts []string
	for _, c := range []struct {
		n    int
		verb string
	}{{r.Created, "created"}, {r.Renamed, "renamed"}, {r.Deleted, "deleted"}, {r.Tagged, "tagged"}} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.verb))
		}
	}
	return fmt.Sprintf("%s, %s", r.Mode, strings.Join(parts, ", "))
}

// FormatTabSyncResult renders a standalone tab synchronization.
func FormatTabSyncResult(spreadsheetID string, r tabsync.Result) string {
	mark := StyleGreen.Render("✓")
	if !r.Changed() {
		mark = Dim("·")
	}
	return fmt.Sprintf("%s %s %s\n", mark, Bold(spreadsheetID), tabSyncSummary(r))
}

// FormatImportResult renders the counts written by a snapshot import.
func FormatImportResult(res *service.ImportResult) string {
	if res == nil {
		return ""
	}
	lines := []string{
		kv("Client", refLabel(res.Ref.ClientID, res.ClientCreated)),
		kv("Campaign", refLabel(res.Ref.CampaignID, res.CampaignAdded)),
		kv("Version", res.Ref.VersionID),
		kv("Entities", fmt.Sprint(res.EntityCount)),
		kv("Breakdowns", fmt.Sprint(res.BreakdownCount)),
		kv("Shortcodes", fmt.Sprint(res.ShortcodeCount)),
		kv("Templates", fmt.Sprint(res.TemplateCount)),
		kv("Documents", fmt.Sprint(res.DocumentCount)),
	}
	return RenderBox("Imported", strings.Join(lines, "\n"))
}

func refLabel(id string, created bool) string {
	if created {
		return id + " " + StyleGreen.Render("(new)")
	}
	return id
}

// FormatPreview renders the three tables an export would write.
func FormatPreview(ref domain.VersionRef, p *service.Preview) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", Header("Summary"), Dim(fmt.Sprintf("%s / %s / %s · %s", ref.ClientID, ref.CampaignID, ref.VersionID, p.Language)))
	b.WriteString(RenderValues(p.Summary, 0))
	fmt.Fprintf(&b, "\n%s\n%s\n", Header("Hierarchy"), Dim(pluralize(p.Entities, "entity", "entities")))
	b.WriteString(RenderValues(p.Hierarchy, previewRowLimit))
	fmt.Fprintf(&b, "\n%s\n%s\n", Header("Breakdown"), Dim(pluralize(p.Breakdowns, "row", "rows")))
	b.WriteString(RenderValues(p.Breakdown, previewRowLimit))
	return b.String()
}
