package gsuite

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetGrid is the raw contents of one sheet, fetched column-major with raw
// formula text (so hyperlink-encoded calendar references survive) and numeric
// dates as legacy serial numbers (not localized strings).
type SheetGrid struct {
	// Title is the sheet's tab name.
	Title string
	// HeaderHeight is the sheet's frozen-row count; the first HeaderHeight
	// rows of every column are header metadata.
	HeaderHeight int
	// Columns holds the cell values, one slice per column.
	Columns [][]any
}

// SheetsClient wraps the Google Sheets API.
type SheetsClient struct {
	service *sheets.Service
}

// NewSheetsClient creates a Sheets client over an authenticated HTTP client.
func NewSheetsClient(ctx context.Context, httpClient *http.Client) (*SheetsClient, error) {
	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsClient{service: service}, nil
}

// Grid fetches the cell grid of the sheet at sheetIndex within the
// spreadsheet, along with its frozen-row count.
func (c *SheetsClient) Grid(ctx context.Context, spreadsheetID string, sheetIndex int) (*SheetGrid, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}
	if sheetIndex < 0 || sheetIndex >= len(spreadsheet.Sheets) {
		return nil, fmt.Errorf("spreadsheet %s has %d sheets, index %d out of range", spreadsheetID, len(spreadsheet.Sheets), sheetIndex)
	}

	props := spreadsheet.Sheets[sheetIndex].Properties
	frozen := 0
	if props.GridProperties != nil {
		frozen = int(props.GridProperties.FrozenRowCount)
	}

	values, err := c.service.Spreadsheets.Values.Get(spreadsheetID, props.Title).
		MajorDimension("COLUMNS").
		ValueRenderOption("FORMULA").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", props.Title, err)
	}

	return &SheetGrid{
		Title:        props.Title,
		HeaderHeight: frozen,
		Columns:      values.Values,
	}, nil
}
