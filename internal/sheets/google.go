package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// valueInputRaw stores values exactly as sent; typed numbers stay numbers.
const valueInputRaw = "RAW"

// GoogleSurface implements Surface with the Sheets v4 REST client.
type GoogleSurface struct {
	svc *gsheets.Service
}

// NewGoogleSurface builds a client authorized by ts. Extra options are
// appended, which lets tests point the client at a local endpoint.
func NewGoogleSurface(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*GoogleSurface, error) {
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &GoogleSurface{svc: svc}, nil
}

func (s *GoogleSurface) ReadValues(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("read "+rng, err)
	}
	return resp.Values, nil
}

func (s *GoogleSurface) WriteValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	body := &gsheets.ValueRange{Range: rng, Values: values}
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, body).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	return wrapAPIError("write "+rng, err)
}

func (s *GoogleSurface) ClearRange(ctx context.Context, spreadsheetID, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	return wrapAPIError("clear "+rng, err)
}

func (s *GoogleSurface) ListTabs(ctx context.Context, spreadsheetID string) ([]Tab, error) {
	ss, err := s.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("list tabs", err)
	}
	tabs := make([]Tab, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		tabs = append(tabs, tabFromProperties(sh.Properties))
	}
	return tabs, nil
}

func (s *GoogleSurface) BatchUpdate(ctx context.Context, spreadsheetID string, ops []TabOp) ([]Tab, error) {
	reqs := make([]*gsheets.Request, 0, len(ops))
	for _, op := range ops {
		req, err := toRequest(op)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	resp, err := s.svc.Spreadsheets.BatchUpdate(spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("batch update", err)
	}

	out := make([]Tab, len(ops))
	for i, reply := range resp.Replies {
		if i >= len(out) {
			break
		}
		if reply != nil && reply.DuplicateSheet != nil && reply.DuplicateSheet.Properties != nil {
			out[i] = tabFromProperties(reply.DuplicateSheet.Properties)
		}
	}
	return out, nil
}

// toRequest builds the API request for op. Sheet id 0 and index 0 are valid
// values, so they are force-sent past the client's omitempty encoding.
func toRequest(op TabOp) (*gsheets.Request, error) {
	switch op.Kind {
	case OpDuplicate:
		return &gsheets.Request{DuplicateSheet: &gsheets.DuplicateSheetRequest{
			SourceSheetId:    op.SheetID,
			InsertSheetIndex: int64(op.InsertIndex),
			NewSheetName:     op.Title,
			ForceSendFields:  []string{"SourceSheetId", "InsertSheetIndex"},
		}}, nil
	case OpRename:
		return &gsheets.Request{UpdateSheetProperties: &gsheets.UpdateSheetPropertiesRequest{
			Properties: &gsheets.SheetProperties{
				SheetId:         op.SheetID,
				Title:           op.Title,
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "title",
		}}, nil
	case OpDelete:
		return &gsheets.Request{DeleteSheet: &gsheets.DeleteSheetRequest{
			SheetId:         op.SheetID,
			ForceSendFields: []string{"SheetId"},
		}}, nil
	}
	return nil, fmt.Errorf("unsupported tab operation %d", op.Kind)
}

func tabFromProperties(p *gsheets.SheetProperties) Tab {
	return Tab{SheetID: p.SheetId, Title: p.Title, Index: int(p.Index)}
}
