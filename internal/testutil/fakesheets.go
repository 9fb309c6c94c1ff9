package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/alexanderramin/mediasheet/internal/sheets"
)

// FakeSheets is an in-memory spreadsheet implementing sheets.Surface. Only
// the B1 tagging cell of each tab is modelled as cell content; every other
// write is recorded by range.
type FakeSheets struct {
	mu sync.Mutex

	tabs   []sheets.Tab
	tags   map[int64]string
	nextID int64

	Writes map[string][][]any
	Clears []string
	Ops    []sheets.TabOp

	// Errors are injected by operation: "read", "write", "clear", "list",
	// "duplicate", "rename", "delete". WriteErrors matches write ranges.
	Errors      map[string]error
	WriteErrors map[string]error
}

// NewFakeSheets creates a spreadsheet with the given tab titles in order.
func NewFakeSheets(titles ...string) *FakeSheets {
	f := &FakeSheets{
		tags:        map[int64]string{},
		Writes:      map[string][][]any{},
		Errors:      map[string]error{},
		WriteErrors: map[string]error{},
		nextID:      100,
	}
	for i, title := range titles {
		f.tabs = append(f.tabs, sheets.Tab{SheetID: int64(i), Title: title, Index: i})
	}
	return f
}

// Tag writes a tab id into the B1 cell of the named tab.
func (f *FakeSheets) Tag(title, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tab, ok := f.byTitle(title); ok {
		f.tags[tab.SheetID] = id
	}
}

// Titles returns the tab titles in index order.
func (f *FakeSheets) Titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.tabs))
	for i, t := range f.tabs {
		out[i] = t.Title
	}
	return out
}

// TagOf returns the B1 content of the named tab.
func (f *FakeSheets) TagOf(title string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tab, ok := f.byTitle(title); ok {
		return f.tags[tab.SheetID]
	}
	return ""
}

// CountOps returns how many structural operations of kind were applied.
func (f *FakeSheets) CountOps(kind sheets.TabOpKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, op := range f.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (f *FakeSheets) byTitle(title string) (sheets.Tab, bool) {
	for _, t := range f.tabs {
		if t.Title == title {
			return t, true
		}
	}
	return sheets.Tab{}, false
}

func (f *FakeSheets) indexOf(id int64) int {
	for i, t := range f.tabs {
		if t.SheetID == id {
			return i
		}
	}
	return -1
}

func (f *FakeSheets) reindex() {
	for i := range f.tabs {
		f.tabs[i].Index = i
	}
}

// splitRange parses "'Title'!B1" or "Title!A1:Z" into title and cell part.
func splitRange(rng string) (string, string) {
	i := strings.LastIndex(rng, "!")
	if i < 0 {
		return rng, ""
	}
	title := rng[:i]
	if strings.HasPrefix(title, "'") && strings.HasSuffix(title, "'") && len(title) >= 2 {
		title = strings.ReplaceAll(title[1:len(title)-1], "''", "'")
	}
	return title, rng[i+1:]
}

func notFound(what string) error {
	return &sheets.APIError{Op: what, Code: http.StatusNotFound, Message: "Unable to parse range: " + what}
}

func (f *FakeSheets) ReadValues(_ context.Context, _ string, rng string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errors["read"]; err != nil {
		return nil, err
	}
	title, cell := splitRange(rng)
	tab, ok := f.byTitle(title)
	if !ok {
		return nil, notFound(rng)
	}
	if cell == "B1" {
		if tag, ok := f.tags[tab.SheetID]; ok && tag != "" {
			return [][]any{{tag}}, nil
		}
		return nil, nil
	}
	return f.Writes[rng], nil
}

func (f *FakeSheets) WriteValues(_ context.Context, _ string, rng string, values [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errors["write"]; err != nil {
		return err
	}
	if err := f.WriteErrors[rng]; err != nil {
		return err
	}
	title, cell := splitRange(rng)
	tab, ok := f.byTitle(title)
	if !ok {
		return notFound(rng)
	}
	if cell == "B1" && len(values) == 1 && len(values[0]) == 1 {
		f.tags[tab.SheetID] = fmt.Sprint(values[0][0])
		return nil
	}
	f.Writes[rng] = values
	return nil
}

func (f *FakeSheets) ClearRange(_ context.Context, _ string, rng string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errors["clear"]; err != nil {
		return err
	}
	f.Clears = append(f.Clears, rng)
	if title, cell := splitRange(rng); cell == "B1" {
		if tab, ok := f.byTitle(title); ok {
			delete(f.tags, tab.SheetID)
		}
	}
	return nil
}

func (f *FakeSheets) ListTabs(_ context.Context, _ string) ([]sheets.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errors["list"]; err != nil {
		return nil, err
	}
	out := append([]sheets.Tab(nil), f.tabs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (f *FakeSheets) BatchUpdate(_ context.Context, _ string, ops []sheets.TabOp) ([]sheets.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	replies := make([]sheets.Tab, len(ops))
	for i, op := range ops {
		if err := f.Errors[op.Kind.String()]; err != nil {
			return nil, err
		}
		reply, err := f.apply(op)
		if err != nil {
			return nil, err
		}
		f.Ops = append(f.Ops, op)
		replies[i] = reply
	}
	return replies, nil
}

func (f *FakeSheets) apply(op sheets.TabOp) (sheets.Tab, error) {
	switch op.Kind {
	case sheets.OpDuplicate:
		src := f.indexOf(op.SheetID)
		if src < 0 {
			return sheets.Tab{}, notFound(fmt.Sprintf("sheet %d", op.SheetID))
		}
		if _, taken := f.byTitle(op.Title); taken {
			return sheets.Tab{}, &sheets.APIError{Op: "duplicate", Code: http.StatusBadRequest,
				Message: fmt.Sprintf("A sheet with the name %q already exists.", op.Title)}
		}
		tab := sheets.Tab{SheetID: f.nextID, Title: op.Title}
		f.nextID++
		f.tags[tab.SheetID] = f.tags[op.SheetID]
		at := op.InsertIndex
		if at < 0 || at > len(f.tabs) {
			at = len(f.tabs)
		}
		f.tabs = append(f.tabs[:at], append([]sheets.Tab{tab}, f.tabs[at:]...)...)
		f.reindex()
		tab.Index = at
		return tab, nil
	case sheets.OpRename:
		i := f.indexOf(op.SheetID)
		if i < 0 {
			return sheets.Tab{}, notFound(fmt.Sprintf("sheet %d", op.SheetID))
		}
		if other, taken := f.byTitle(op.Title); taken && other.SheetID != op.SheetID {
			return sheets.Tab{}, &sheets.APIError{Op: "rename", Code: http.StatusBadRequest,
				Message: fmt.Sprintf("A sheet with the name %q already exists.", op.Title)}
		}
		f.tabs[i].Title = op.Title
		return sheets.Tab{}, nil
	case sheets.OpDelete:
		i := f.indexOf(op.SheetID)
		if i < 0 {
			return sheets.Tab{}, notFound(fmt.Sprintf("sheet %d", op.SheetID))
		}
		f.tabs = append(f.tabs[:i], f.tabs[i+1:]...)
		delete(f.tags, op.SheetID)
		f.reindex()
		return sheets.Tab{}, nil
	}
	return sheets.Tab{}, fmt.Errorf("unsupported op %d", op.Kind)
}
