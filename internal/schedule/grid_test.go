package schedule

import (
	"errors"
	"testing"
)

// testGrid builds a column-major grid with a title row, a labels row, and two
// data rows. headerHeight is 2 (title + labels).
func testGrid(columns ...[]any) [][]any {
	return columns
}

func TestParseGrid_GroupsByCalendar(t *testing.T) {
	teamLink := `=HYPERLINK("https://calendar.google.com/calendar?cid=dGVhbUBleGFtcGxlLmNvbQ==","Team")`
	kidsLink := `=HYPERLINK("https://calendar.google.com/calendar?cid=a2lkc0BleGFtcGxlLmNvbQ==","Kids")`

	grid, skipped, err := ParseGrid(testGrid(
		[]any{"Master Schedule", "calendar", 44000.0, 44007.0},
		[]any{"", teamLink, "Alice", "Bob"},
		[]any{"", kidsLink, "Carol", "Dave"},
		[]any{"", teamLink, "Erin", "Frank"},
	), 2)
	if err != nil {
		t.Fatalf("ParseGrid() returned an error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("Expected no skipped columns, got %v", skipped)
	}

	schedules := grid.Schedules()
	if len(schedules) != 3 {
		t.Fatalf("Expected 3 schedules, got %d", len(schedules))
	}

	groups := grid.Groups()
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if len(groups["team@example.com"]) != 2 {
		t.Errorf("Expected 2 schedules for team calendar, got %d", len(groups["team@example.com"]))
	}
	if len(groups["kids@example.com"]) != 1 {
		t.Errorf("Expected 1 schedule for kids calendar, got %d", len(groups["kids@example.com"]))
	}

	// The groups partition the schedules exhaustively and disjointly.
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	if total != len(schedules) {
		t.Errorf("Groups hold %d schedules, want %d", total, len(schedules))
	}

	ids := grid.CalendarIDs()
	if len(ids) != 2 || ids[0] != "kids@example.com" || ids[1] != "team@example.com" {
		t.Errorf("Expected sorted calendar IDs, got %v", ids)
	}
}

func TestParseGrid_SkipsColumnsWithoutCalendarLink(t *testing.T) {
	teamLink := `=HYPERLINK("https://calendar.google.com/calendar?cid=dGVhbUBleGFtcGxlLmNvbQ==","Team")`

	grid, skipped, err := ParseGrid(testGrid(
		[]any{"Master Schedule", "calendar", 44000.0},
		[]any{"", "Notes column", "Some note"},
		[]any{"", teamLink, "Alice"},
	), 2)
	if err != nil {
		t.Fatalf("ParseGrid() returned an error: %v", err)
	}

	if len(grid.Schedules()) != 1 {
		t.Fatalf("Expected 1 valid schedule, got %d", len(grid.Schedules()))
	}
	if len(skipped) != 1 {
		t.Fatalf("Expected 1 skipped column, got %d", len(skipped))
	}
	if skipped[0].Column != 1 {
		t.Errorf("Expected column 1 to be skipped, got %d", skipped[0].Column)
	}
	if !errors.Is(skipped[0], ErrNoCalendarLink) {
		t.Errorf("Expected ErrNoCalendarLink, got %v", skipped[0].Err)
	}
}

func TestParseGrid_MalformedColumnDoesNotAbortGrid(t *testing.T) {
	teamLink := `=HYPERLINK("https://calendar.google.com/calendar?cid=dGVhbUBleGFtcGxlLmNvbQ==","Team")`
	kidsLink := `=HYPERLINK("https://calendar.google.com/calendar?cid=a2lkc0BleGFtcGxlLmNvbQ==","Kids")`

	// The date axis starts with an empty cell, so row grouping fails for
	// every data column; the grid itself must still parse.
	grid, skipped, err := ParseGrid(testGrid(
		[]any{"Master Schedule", "calendar", "", 44000.0},
		[]any{"", teamLink, "Alice", "Bob"},
		[]any{"", kidsLink, "Carol", "Dave"},
	), 2)
	if err != nil {
		t.Fatalf("ParseGrid() returned an error: %v", err)
	}

	if len(grid.Schedules()) != 0 {
		t.Errorf("Expected no valid schedules, got %d", len(grid.Schedules()))
	}
	if len(skipped) != 2 {
		t.Fatalf("Expected 2 skipped columns, got %d", len(skipped))
	}
	for _, colErr := range skipped {
		if !errors.Is(colErr, ErrFirstDateEmpty) {
			t.Errorf("Expected ErrFirstDateEmpty for column %d, got %v", colErr.Column, colErr.Err)
		}
	}
}

func TestParseGrid_RejectsDegenerateGrids(t *testing.T) {
	if _, _, err := ParseGrid(nil, 2); err == nil {
		t.Error("Expected an error for an empty grid")
	}
	if _, _, err := ParseGrid(testGrid([]any{"a"}, []any{"b"}), 1); err == nil {
		t.Error("Expected an error for a header height below 2")
	}
}

func TestParseGrid_RaggedColumns(t *testing.T) {
	teamLink := `=HYPERLINK("https://calendar.google.com/calendar?cid=dGVhbUBleGFtcGxlLmNvbQ==","Team")`

	// The data column is shorter than the date axis: trailing cells empty.
	grid, skipped, err := ParseGrid(testGrid(
		[]any{"Master Schedule", "calendar", 44000.0, 44007.0},
		[]any{"", teamLink, "Alice"},
	), 2)
	if err != nil {
		t.Fatalf("ParseGrid() returned an error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("Expected no skipped columns, got %v", skipped)
	}

	rows := grid.Schedules()[0].Rows()
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if len(rows[1].Attendees) != 0 {
		t.Errorf("Expected no attendees in the short row, got %v", rows[1].Attendees)
	}
}
