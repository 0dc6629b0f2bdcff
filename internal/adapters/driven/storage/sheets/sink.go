// Package sheets provides a Google Sheets implementation of the Sink
// interface, one tab per collection. It exists for small teams that
// live in a spreadsheet rather than a database.
//
// A spreadsheet has no transactional upsert, so the sink approximates
// one: it reads the key columns already present and appends only rows
// whose keys are unseen. Two consequences follow. Concurrent writers
// can both pass the read before either appends, duplicating rows; run
// one pipeline instance against a spreadsheet. And a re-reported row
// whose key already exists is skipped even when its values changed;
// corrections only land in the SQL sinks.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Sink writes canonical rows to a Google spreadsheet.
type Sink struct {
	svc           *sheets.Service
	spreadsheetID string
}

var _ driven.Sink = (*Sink)(nil)

// NewSink builds a Sheets client from service account credentials.
func NewSink(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Sink, error) {
	jwt, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &Sink{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Upsert appends the batch rows whose keys are not yet present on the
// collection's tab, creating the tab and header row on first use.
func (s *Sink) Upsert(ctx context.Context, batch domain.SinkBatch) (int, error) {
	if len(batch.Rows) == 0 {
		return 0, nil
	}
	if err := batch.Spec.Validate(); err != nil {
		return 0, fmt.Errorf("validating collection: %w", err)
	}
	batch = batch.DedupByKey()

	if err := s.ensureTab(ctx, batch.Spec); err != nil {
		return 0, err
	}

	existing, err := s.existingKeys(ctx, batch.Spec)
	if err != nil {
		return 0, err
	}

	var values [][]any
	for _, row := range batch.Rows {
		if len(row) != len(batch.Spec.Columns) {
			return 0, fmt.Errorf("collection %s: row has %d values, want %d",
				batch.Spec.Name, len(row), len(batch.Spec.Columns))
		}
		if existing[batch.Spec.KeyOf(row)] {
			continue
		}
		cells := make([]any, 0, len(row))
		for _, v := range row {
			cells = append(cells, cellValue(v))
		}
		values = append(values, cells)
	}
	if len(values) == 0 {
		return 0, nil
	}

	_, err = s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, tabRange(batch.Spec.Name), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("appending to %s: %w", batch.Spec.Name, err)
	}
	return len(values), nil
}

// Close is a no-op; the HTTP client needs no teardown.
func (s *Sink) Close() error {
	return nil
}

// ensureTab creates the collection's tab with a header row when absent.
func (s *Sink) ensureTab(ctx context.Context, spec domain.CollectionSpec) error {
	spreadsheet, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == spec.Name {
			return nil
		}
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: spec.Name},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating tab %s: %w", spec.Name, err)
	}

	header := make([]any, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		header = append(header, c)
	}
	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, tabRange(spec.Name), &sheets.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing header for %s: %w", spec.Name, err)
	}
	return nil
}

// existingKeys reads the tab and projects every data row onto the key
// columns.
func (s *Sink) existingKeys(ctx context.Context, spec domain.CollectionSpec) (map[string]bool, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, tabRange(spec.Name)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", spec.Name, err)
	}

	keys := make(map[string]bool)
	for i, cells := range resp.Values {
		if i == 0 {
			continue // header
		}
		keys[keyOfCells(spec, cells)] = true
	}
	return keys, nil
}

// keyOfCells renders a sheet row's key projection the same way
// CollectionSpec.KeyOf renders a canonical row's.
func keyOfCells(spec domain.CollectionSpec, cells []any) string {
	parts := make([]string, 0, len(spec.KeyColumns))
	for _, i := range spec.KeyIndexes() {
		if i < len(cells) {
			parts = append(parts, fmt.Sprintf("%v", cells[i]))
		} else {
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "\x1f")
}

// cellValue maps a canonical cell to a sheet cell. Nulls become empty
// cells, matching how absent values read back.
func cellValue(v any) any {
	if v == nil {
		return ""
	}
	return v
}

func tabRange(name string) string {
	return "'" + name + "'"
}
