package schedule

import (
	"fmt"
	"strings"
)

// ErrFirstDateEmpty is returned when a schedule column's first date cell is
// empty, which makes the row grouping ill-defined. Grouping is rejected
// rather than guessed.
var ErrFirstDateEmpty = fmt.Errorf("first date cell is empty")

// Row is one event's worth of schedule data: a date and the attendees rostered
// for it. Consecutive empty-date cells continue the previous row, so a row
// can collect attendees from several grid rows.
type Row struct {
	Date      float64
	Attendees []string
}

// Schedule is one data column's full definition: the shared date axis, this
// column's attendee cells, and its header block. A Schedule is only
// constructed when its header resolves a calendar reference; its rows and
// events are computed eagerly at construction and never change.
type Schedule struct {
	ref    CalendarReference
	header *Header
	rows   []Row
	events []*Event
}

// NewSchedule builds a Schedule from the date axis, one column's attendee
// cells, and its header. Returns ErrNoCalendarLink (wrapped) when the header
// does not resolve a calendar reference, and ErrFirstDateEmpty (wrapped) when
// the first date cell is empty.
func NewSchedule(dates, attendees []any, header *Header) (*Schedule, error) {
	ref, err := ParseCalendarReference(header.GetString("calendar"))
	if err != nil {
		return nil, err
	}

	rows, err := groupRows(dates, attendees)
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", ref.Label, err)
	}

	s := &Schedule{ref: ref, header: header, rows: rows}
	s.events = s.buildEvents()
	return s, nil
}

// groupRows zips dates against attendees. A non-empty date cell starts a new
// row; until the next non-empty date cell every attendee cell attaches to the
// current row, and empty attendee cells are skipped.
func groupRows(dates, attendees []any) ([]Row, error) {
	var rows []Row
	for i, date := range dates {
		if d, ok := cellNumber(date); ok {
			rows = append(rows, Row{Date: d})
		} else if len(rows) == 0 {
			return nil, ErrFirstDateEmpty
		}

		var attendee any
		if i < len(attendees) {
			attendee = attendees[i]
		}
		if !cellEmpty(attendee) {
			row := &rows[len(rows)-1]
			row.Attendees = append(row.Attendees, cellString(attendee))
		}
	}
	return rows, nil
}

// CalendarID returns the decoded identifier of the target calendar.
func (s *Schedule) CalendarID() string {
	return s.ref.CalendarID
}

// EventLabel returns the calendar display label with embedded newlines
// flattened to spaces, used as the label of every event this column produces.
func (s *Schedule) EventLabel() string {
	return strings.ReplaceAll(s.ref.Label, "\n", " ")
}

// Location returns the column's location header cell, or "".
func (s *Schedule) Location() string {
	return s.header.GetString("location")
}

// Rows returns the column's (date, attendees) groupings in sheet order.
func (s *Schedule) Rows() []Row {
	return s.rows
}

// Events returns the desired events derived 1:1 from the column's rows.
func (s *Schedule) Events() []*Event {
	return s.events
}

func (s *Schedule) buildEvents() []*Event {
	start, hasStart := s.header.GetNumber("start")
	end, hasEnd := s.header.GetNumber("end")
	hasTimes := hasStart && hasEnd

	events := make([]*Event, 0, len(s.rows))
	for _, row := range s.rows {
		events = append(events, &Event{
			CalendarID:  s.ref.CalendarID,
			Label:       s.EventLabel(),
			Location:    s.Location(),
			Date:        row.Date,
			StartOffset: start,
			EndOffset:   end,
			HasTimes:    hasTimes,
			Attendees:   row.Attendees,
		})
	}
	return events
}
