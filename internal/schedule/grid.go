package schedule

import (
	"fmt"
	"sort"
)

// Grid is a fully parsed schedule sheet: one Schedule per data column whose
// header resolved a calendar reference.
type Grid struct {
	schedules []*Schedule
}

// ColumnError records why a data column was excluded from the grid. Columns
// wrapping ErrNoCalendarLink are excluded by design (not every column feeds a
// calendar); anything else indicates malformed data worth surfacing.
type ColumnError struct {
	// Column is the zero-based grid column index (column 0 is the date axis).
	Column int
	Err    error
}

func (e ColumnError) Error() string {
	return fmt.Sprintf("column %d: %v", e.Column, e.Err)
}

func (e ColumnError) Unwrap() error {
	return e.Err
}

// ParseGrid splits the raw column-major cell grid into header and data rows
// and builds one Schedule per data column. headerHeight is the sheet's
// frozen-row count: row 0 is the title row, rows [1, headerHeight) are header
// metadata, and the remainder are data. Columns that fail to parse are
// skipped and reported; a malformed column never aborts the rest of the grid.
func ParseGrid(values [][]any, headerHeight int) (*Grid, []ColumnError, error) {
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("grid needs a date column and at least one data column, got %d columns", len(values))
	}
	if headerHeight < 2 {
		return nil, nil, fmt.Errorf("header height must be at least 2 (title row plus labels), got %d", headerHeight)
	}

	labels := sliceRows(values[0], 1, headerHeight)
	dates := sliceRows(values[0], headerHeight, len(values[0]))

	var schedules []*Schedule
	var skipped []ColumnError
	for i, column := range values[1:] {
		header := NewHeader(labels, sliceRows(column, 1, headerHeight))
		attendees := sliceRows(column, headerHeight, len(column))

		s, err := NewSchedule(dates, attendees, header)
		if err != nil {
			skipped = append(skipped, ColumnError{Column: i + 1, Err: err})
			continue
		}
		schedules = append(schedules, s)
	}

	return &Grid{schedules: schedules}, skipped, nil
}

// sliceRows returns rows [from, to) of a column, tolerating the ragged
// columns the Sheets API produces when trailing cells are empty.
func sliceRows(column []any, from, to int) []any {
	if from > len(column) {
		return nil
	}
	if to > len(column) {
		to = len(column)
	}
	return column[from:to]
}

// Schedules returns every valid schedule column, in sheet order.
func (g *Grid) Schedules() []*Schedule {
	return g.schedules
}

// Groups partitions the schedules by target calendar ID. Every valid schedule
// appears in exactly one group; a calendar fed by several columns (e.g. two
// weekly roles sharing one calendar) gets all of them.
func (g *Grid) Groups() map[string][]*Schedule {
	groups := make(map[string][]*Schedule)
	for _, s := range g.schedules {
		groups[s.CalendarID()] = append(groups[s.CalendarID()], s)
	}
	return groups
}

// CalendarIDs returns the group keys in sorted order, for deterministic
// processing.
func (g *Grid) CalendarIDs() []string {
	groups := g.Groups()
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
