// Package export renders the desired schedule as an iCalendar document, so a
// maintainer can preview what the sheet derives to without touching the live
// calendars.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redeemerbc/schedule-sync/internal/schedule"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// WriteICS encodes every desired event of the grid as a VEVENT in one
// VCALENDAR. Attendee names are kept as written in the sheet (no directory
// resolution happens here) and land in the event description.
func WriteICS(w io.Writer, grid *schedule.Grid, loc *time.Location) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//schedule-sync//EN")

	now := time.Now()
	for _, sched := range grid.Schedules() {
		for _, event := range sched.Events() {
			cal.Children = append(cal.Children, veventFor(event, loc, now))
		}
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func veventFor(event *schedule.Event, loc *time.Location, now time.Time) *ical.Component {
	vevent := ical.NewComponent(ical.CompEvent)
	vevent.Props.SetText(ical.PropUID, uuid.New().String())
	vevent.Props.SetText(ical.PropSummary, event.Label)

	if event.Location != "" {
		vevent.Props.SetText(ical.PropLocation, event.Location)
	}
	if len(event.Attendees) > 0 {
		vevent.Props.SetText(ical.PropDescription, strings.Join(event.Attendees, "\n"))
	}

	vevent.Props.SetDateTime("DTSTART", event.StartAt(loc))
	vevent.Props.SetDateTime("DTEND", event.EndAt(loc))
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, now)
	return vevent
}
