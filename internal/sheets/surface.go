// Package sheets is the narrow surface of the Google Sheets API the export
// pipeline uses: value reads, typed writes, clears and tab structure changes.
package sheets

import (
	"context"
	"strings"
)

// Surface is implemented by the Google client and by in-memory fakes.
type Surface interface {
	ReadValues(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	// WriteValues stores values as typed cells: float64 stays numeric and
	// strings are never re-parsed by the spreadsheet.
	WriteValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	ClearRange(ctx context.Context, spreadsheetID, rng string) error
	ListTabs(ctx context.Context, spreadsheetID string) ([]Tab, error)
	// BatchUpdate applies ops in order. The reply slice has one entry per op;
	// duplicate ops report the new tab, other entries are zero.
	BatchUpdate(ctx context.Context, spreadsheetID string, ops []TabOp) ([]Tab, error)
}

// Tab is the live properties of one spreadsheet tab.
type Tab struct {
	SheetID int64
	Title   string
	Index   int
}

type TabOpKind int

const (
	OpDuplicate TabOpKind = iota + 1
	OpRename
	OpDelete
)

func (k TabOpKind) String() string {
	switch k {
	case OpDuplicate:
		return "duplicate"
	case OpRename:
		return "rename"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// TabOp is one structural change. For OpDuplicate SheetID is the source tab
// and Title the new tab's name.
type TabOp struct {
	Kind        TabOpKind
	SheetID     int64
	InsertIndex int
	Title       string
}

func Duplicate(sourceID int64, insertIndex int, title string) TabOp {
	return TabOp{Kind: OpDuplicate, SheetID: sourceID, InsertIndex: insertIndex, Title: title}
}

func Rename(sheetID int64, title string) TabOp {
	return TabOp{Kind: OpRename, SheetID: sheetID, Title: title}
}

func Delete(sheetID int64) TabOp {
	return TabOp{Kind: OpDelete, SheetID: sheetID}
}

// QuoteTitle quotes a tab title for use in an A1 range.
func QuoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// CellRange returns an A1 range for a cell of the named tab, e.g. 'Plan'!B1.
func CellRange(title, cell string) string {
	return QuoteTitle(title) + "!" + cell
}
