package schedule

import (
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
)

// Person is a directory entry used to resolve free-text attendee names into
// email addresses.
type Person struct {
	FullName string
	Email    string
}

// Directory looks people up by the full name written in the spreadsheet.
type Directory interface {
	PersonByFullName(name string) (Person, bool)
}

// Attendee is the outcome of resolving one spreadsheet attendee cell against
// the directory. Exactly one of Email or Text is set: Email when the
// directory matched the name, Text when the cell is kept as free-form
// description content (e.g. "Family Service").
type Attendee struct {
	Email string
	Text  string
}

// Resolved reports whether the attendee maps to a directory contact.
func (a Attendee) Resolved() bool {
	return a.Email != ""
}

// Event is a desired calendar event derived from one schedule row. It is
// immutable once constructed.
type Event struct {
	// CalendarID is the target calendar, decoded from the column header.
	CalendarID string
	// Label is the column's event label (calendar display label with
	// newlines flattened to spaces).
	Label string
	// Location is the column's location header cell, may be empty.
	Location string
	// Date is the spreadsheet serial date of the event's day.
	Date float64
	// StartOffset and EndOffset are fractional-day time offsets from the
	// column header. When HasTimes is false the event spans the whole day.
	StartOffset float64
	EndOffset   float64
	HasTimes    bool
	// Attendees holds the raw attendee names from the sheet, in row order.
	Attendees []string
}

// StartAt returns the event's start time in loc: the header's start offset
// when present, otherwise the start of the event's day.
func (e *Event) StartAt(loc *time.Location) time.Time {
	if e.HasTimes {
		return SerialToTime(e.Date+e.StartOffset, loc)
	}
	return SerialToTime(e.Date, loc)
}

// EndAt returns the event's end time in loc: the header's end offset when
// present, otherwise the end of the event's day.
func (e *Event) EndAt(loc *time.Location) time.Time {
	if e.HasTimes {
		return SerialToTime(e.Date+e.EndOffset, loc)
	}
	return SerialToTime(e.Date, loc).Add(24*time.Hour - time.Second)
}

// ResolveAttendees maps the event's raw attendee names through the directory.
func (e *Event) ResolveAttendees(dir Directory) []Attendee {
	resolved := make([]Attendee, 0, len(e.Attendees))
	for _, name := range e.Attendees {
		if person, ok := dir.PersonByFullName(name); ok {
			resolved = append(resolved, Attendee{Email: person.Email})
			continue
		}
		resolved = append(resolved, Attendee{Text: name})
	}
	return resolved
}

// ToCalendarEvent renders the desired event as a Google Calendar event for
// the named calendar. Resolved attendees become the guest list; unresolved
// names become description lines. The result carries no event ID, which is
// how the reconciler tells desired events from observed ones.
func (e *Event) ToCalendarEvent(calendarSummary string, dir Directory, loc *time.Location) *calendar.Event {
	var attendees []*calendar.EventAttendee
	var description []string
	for _, a := range e.ResolveAttendees(dir) {
		if a.Resolved() {
			attendees = append(attendees, &calendar.EventAttendee{Email: a.Email})
		} else {
			description = append(description, a.Text)
		}
	}

	return &calendar.Event{
		Summary: calendarSummary + " - " + e.Label,
		Start: &calendar.EventDateTime{
			DateTime: e.StartAt(loc).Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: e.EndAt(loc).Format(time.RFC3339),
		},
		Description:           strings.Join(description, "\n"),
		Attendees:             attendees,
		Location:              e.Location,
		GuestsCanInviteOthers: boolPtr(false),
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 60 * 24 * 6},
				{Method: "popup", Minutes: 60},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
