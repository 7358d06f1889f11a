package schedule

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

// ErrNoCalendarLink is returned when a header's calendar cell does not embed a
// recognizable calendar hyperlink. A column without one is simply excluded
// from sync.
var ErrNoCalendarLink = fmt.Errorf("header has no calendar hyperlink")

// calendarLinkRe matches the cid parameter and display label embedded in a
// HYPERLINK formula, e.g.
// =HYPERLINK("https://calendar.google.com/calendar?cid=<base64>","Label").
var calendarLinkRe = regexp.MustCompile(`\?cid=(?P<cid>[^"]+)","(?P<label>[^"]+)`)

// CalendarReference identifies the Google Calendar a schedule column feeds.
type CalendarReference struct {
	// CalendarID is the real calendar identifier, decoded from the base64
	// cid URL parameter. This is what the Calendar API accepts, not the
	// display label.
	CalendarID string
	// Label is the human-readable calendar name from the hyperlink text.
	Label string
}

// ParseCalendarReference extracts a CalendarReference from a cell's raw
// formula text. Returns ErrNoCalendarLink when the pattern does not match,
// or a decode error when the cid parameter is not valid base64.
func ParseCalendarReference(rawCellText string) (CalendarReference, error) {
	m := calendarLinkRe.FindStringSubmatch(rawCellText)
	if m == nil {
		return CalendarReference{}, ErrNoCalendarLink
	}

	cid, label := m[1], m[2]
	decoded, err := base64.StdEncoding.DecodeString(cid)
	if err != nil {
		// Calendar links in the wild sometimes drop the base64 padding.
		decoded, err = base64.RawStdEncoding.DecodeString(cid)
		if err != nil {
			return CalendarReference{}, fmt.Errorf("failed to decode calendar id %q: %w", cid, err)
		}
	}

	return CalendarReference{CalendarID: string(decoded), Label: label}, nil
}
