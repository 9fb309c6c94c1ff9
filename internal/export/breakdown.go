package export

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// BreakdownHeaders is the header row of the breakdown table.
var BreakdownHeaders = []string{
	"Tactic Id", "Breakdown Name", "Type", "Period Id", "Period Name", "Date",
	"Custom Name", "Stored Date", "Order", "Value", "Unit Cost", "Total", "isToggled",
}

var storedDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseStoredDate reads a stored ISO date as UTC.
func parseStoredDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range storedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// periodName returns the display name of an automatic period.
func periodName(t domain.BreakdownType, date time.Time) string {
	if t == domain.BreakdownMonthly {
		return date.Format("Jan 06")
	}
	return date.Format("02 Jan")
}

// FlattenBreakdowns produces one row per stored period of every tactic.
// Breakdown ids without a campaign definition are skipped with a warning;
// unparseable dates leave the row undated.
func FlattenBreakdowns(h *domain.Hierarchy, logger *zap.Logger) []domain.BreakdownRow {
	if logger == nil {
		logger = zap.NewNop()
	}
	var rows []domain.BreakdownRow
	for _, tc := range OrderedTactics(h) {
		ids := make([]string, 0, len(tc.Breakdowns))
		for id := range tc.Breakdowns {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, breakdownID := range ids {
			def, ok := h.BreakdownDefinitions[breakdownID]
			if !ok {
				logger.Warn("skipping breakdown without definition",
					zap.String("tactic_id", tc.ID),
					zap.String("breakdown_id", breakdownID))
				continue
			}
			for _, p := range tc.Breakdowns[breakdownID].Periods {
				rows = append(rows, breakdownRow(tc.ID, def, p, logger))
			}
		}
	}
	SortBreakdownRows(rows)
	return rows
}

func breakdownRow(tacticID string, def domain.BreakdownDefinition, p domain.PeriodValue, logger *zap.Logger) domain.BreakdownRow {
	row := domain.BreakdownRow{
		TacticID:       tacticID,
		BreakdownID:    def.ID,
		BreakdownName:  def.Name,
		BreakdownType:  def.Type,
		PeriodID:       p.ID,
		PeriodName:     p.ID,
		Value:          p.Value,
		UnitCost:       p.UnitCost,
		Total:          p.Total,
		IsToggled:      p.IsToggled,
		Order:          int64(p.Order),
		BreakdownOrder: def.Order,
		PeriodOrder:    p.Order,
		StoredDate:     p.StoredDate,
	}

	if def.Type == domain.BreakdownCustom {
		row.CustomName = p.CustomName
		if strings.TrimSpace(p.CustomName) != "" {
			row.PeriodName = p.CustomName
		}
		return row
	}

	date, ok := parseStoredDate(p.StoredDate)
	if !ok {
		logger.Debug("period date did not parse",
			zap.String("tactic_id", tacticID),
			zap.String("period_id", p.ID),
			zap.String("stored_date", p.StoredDate))
		return row
	}
	row.StartDate = &date
	row.PeriodName = periodName(def.Type, date)
	if row.Order == 0 {
		row.Order = date.UnixMilli()
	}
	return row
}

// SortBreakdownRows orders dated rows chronologically, then undated rows.
// Ties fall back to breakdown order and then period order.
func SortBreakdownRows(rows []domain.BreakdownRow) {
	slices.SortStableFunc(rows, func(a, b domain.BreakdownRow) int {
		switch {
		case a.StartDate != nil && b.StartDate == nil:
			return -1
		case a.StartDate == nil && b.StartDate != nil:
			return 1
		case a.StartDate != nil && b.StartDate != nil:
			if c := a.StartDate.Compare(*b.StartDate); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(a.BreakdownOrder, b.BreakdownOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})
}

// BreakdownTable renders rows with typed numeric and boolean cells.
func BreakdownTable(rows []domain.BreakdownRow) [][]any {
	out := make([][]any, 0, len(rows)+1)
	header := make([]any, len(BreakdownHeaders))
	for i, h := range BreakdownHeaders {
		header[i] = h
	}
	out = append(out, header)
	for _, r := range rows {
		date := ""
		if r.StartDate != nil {
			date = r.StartDate.Format("2006-01-02")
		}
		out = append(out, []any{
			r.TacticID, r.BreakdownName, string(r.BreakdownType), r.PeriodID, r.PeriodName, date,
			r.CustomName, r.StoredDate, r.Order, r.Value, r.UnitCost, r.Total, r.IsToggled,
		})
	}
	return out
}
