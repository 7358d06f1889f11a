package schedule

import (
	"errors"
	"testing"
)

func TestParseCalendarReference(t *testing.T) {
	raw := `=HYPERLINK("https://calendar.google.com/calendar?cid=dGVhbUBleGFtcGxlLmNvbQ==","Team Calendar")`

	ref, err := ParseCalendarReference(raw)
	if err != nil {
		t.Fatalf("ParseCalendarReference() returned an error: %v", err)
	}

	if ref.CalendarID != "team@example.com" {
		t.Errorf("Expected CalendarID to be 'team@example.com', got '%s'", ref.CalendarID)
	}
	if ref.Label != "Team Calendar" {
		t.Errorf("Expected Label to be 'Team Calendar', got '%s'", ref.Label)
	}
}

func TestParseCalendarReference_UnpaddedBase64(t *testing.T) {
	// dGVhbUBleGFtcGxlLmNvbQ without the trailing padding
	raw := `=HYPERLINK("https://calendar.google.com/calendar?cid=dGVhbUBleGFtcGxlLmNvbQ","Team")`

	ref, err := ParseCalendarReference(raw)
	if err != nil {
		t.Fatalf("ParseCalendarReference() returned an error: %v", err)
	}
	if ref.CalendarID != "team@example.com" {
		t.Errorf("Expected CalendarID to be 'team@example.com', got '%s'", ref.CalendarID)
	}
}

func TestParseCalendarReference_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty cell", raw: ""},
		{name: "plain text", raw: "Kids Ministry"},
		{name: "hyperlink without cid", raw: `=HYPERLINK("https://example.com","Site")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCalendarReference(tt.raw)
			if !errors.Is(err, ErrNoCalendarLink) {
				t.Errorf("Expected ErrNoCalendarLink, got %v", err)
			}
		})
	}
}

func TestParseCalendarReference_BadBase64(t *testing.T) {
	raw := `=HYPERLINK("https://calendar.google.com/calendar?cid=!!!not-base64!!!","Bad")`

	_, err := ParseCalendarReference(raw)
	if err == nil {
		t.Fatal("Expected a decode error, got nil")
	}
	if errors.Is(err, ErrNoCalendarLink) {
		t.Error("A matching link with bad base64 should not report ErrNoCalendarLink")
	}
}
