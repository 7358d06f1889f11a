package schedule

import "strings"

// Header is the fixed-height metadata block attached to one schedule column.
// It pairs the shared label rows from the first grid column (lower-cased) with
// the corresponding cells of the data column.
type Header struct {
	labels []string
	column []any
}

// NewHeader builds a Header from the shared labels and one column's header
// cells. Labels are matched case-insensitively; order defines the index
// correspondence between the label row and every column's header rows.
func NewHeader(labels []any, column []any) *Header {
	lowered := make([]string, len(labels))
	for i, label := range labels {
		lowered[i] = strings.ToLower(cellString(label))
	}
	return &Header{labels: lowered, column: column}
}

// Get returns the header cell for the given label, or nil if the label is not
// present or the column has no cell at that index. Matching is
// case-insensitive and exact; there is no fuzzy matching.
func (h *Header) Get(label string) any {
	want := strings.ToLower(label)
	for i, l := range h.labels {
		if l == want {
			if i >= len(h.column) {
				return nil
			}
			return h.column[i]
		}
	}
	return nil
}

// GetString returns the header cell for label as a string, or "" when absent.
func (h *Header) GetString(label string) string {
	return cellString(h.Get(label))
}

// GetNumber returns the header cell for label as a number. The second return
// is false when the label is absent or the cell is not numeric.
func (h *Header) GetNumber(label string) (float64, bool) {
	return cellNumber(h.Get(label))
}

// cellString renders a raw sheet cell as a string. Cells arrive from the
// Sheets API as string, float64, bool, or nil.
func cellString(v any) string {
	s, _ := v.(string)
	return s
}

// cellNumber extracts a numeric cell value. Serial dates and time-of-day
// offsets arrive as float64 when the range is fetched with
// dateTimeRenderOption=SERIAL_NUMBER.
func cellNumber(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// cellEmpty reports whether a raw cell has no usable value. The Sheets API
// returns empty cells as "" or omits them (nil).
func cellEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}
