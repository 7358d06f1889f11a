package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redeemerbc/schedule-sync/internal/gsuite"
	"github.com/redeemerbc/schedule-sync/internal/schedule"
)

// Syncer reconciles the desired events of each schedule group against the
// live state of its target calendar and applies the minimal set of changes.
// Mutating calls for one calendar are strictly serialized; calendars
// themselves are processed sequentially in sorted ID order.
type Syncer struct {
	logger    *slog.Logger
	client    gsuite.CalendarClient
	directory schedule.Directory
	loc       *time.Location
	dryRun    bool
	exec      SerialExecutor
}

// NewSyncer creates a Syncer. timeout bounds each individual calendar call;
// with dryRun set the syncer logs the planned actions without applying them.
func NewSyncer(logger *slog.Logger, client gsuite.CalendarClient, directory schedule.Directory, loc *time.Location, dryRun bool, timeout time.Duration) *Syncer {
	return &Syncer{
		logger:    logger,
		client:    client,
		directory: directory,
		loc:       loc,
		dryRun:    dryRun,
		exec:      SerialExecutor{Timeout: timeout},
	}
}

// SyncAll syncs every schedule group in the grid to its calendar. A failing
// calendar never blocks the others; the aggregated failures are returned
// after every calendar has been attempted.
func (s *Syncer) SyncAll(ctx context.Context, grid *schedule.Grid) error {
	groups := grid.Groups()

	var errs []error
	for _, calendarID := range grid.CalendarIDs() {
		if err := s.SyncGroup(ctx, calendarID, groups[calendarID]); err != nil {
			s.logger.Error("calendar sync failed", "calendarId", calendarID, "error", err)
			errs = append(errs, fmt.Errorf("calendar %s: %w", calendarID, err))
		}
	}
	return errors.Join(errs...)
}

// SyncGroup syncs one calendar's schedule group: it unions the desired events
// of every schedule feeding the calendar, fetches the observed events over
// the schedules' date window, classifies each pairing, and applies the
// buckets in the fixed order update, create, delete.
func (s *Syncer) SyncGroup(ctx context.Context, calendarID string, group []*schedule.Schedule) error {
	var desired []*schedule.Event
	for _, sched := range group {
		desired = append(desired, sched.Events()...)
	}
	if len(desired) == 0 {
		s.logger.Info("schedule group has no events, skipping", "calendarId", calendarID)
		return nil
	}

	cal, err := s.client.GetCalendar(ctx, calendarID)
	if err != nil {
		return err
	}

	timeMin, timeMax := s.eventWindow(desired)
	observed, err := s.client.GetEvents(ctx, calendarID, timeMin, timeMax)
	if err != nil {
		return err
	}
	s.logger.Debug("fetched calendar events",
		"calendar", cal.Summary, "count", len(observed),
		"timeMin", timeMin, "timeMax", timeMax)

	reconciler := NewReconciler(s.loc)
	for _, event := range desired {
		reconciler.Add(event.ToCalendarEvent(cal.Summary, s.directory, s.loc))
	}
	for _, event := range observed {
		reconciler.Add(event)
	}

	buckets := reconciler.Buckets()
	s.logBuckets(cal.Summary, buckets)

	if s.dryRun {
		s.logger.Info("dry run, no changes applied", "calendar", cal.Summary)
		return nil
	}
	return s.applyBuckets(ctx, calendarID, buckets)
}

// eventWindow computes the observed-event fetch window: the start of the
// earliest scheduled day through the end of the latest.
func (s *Syncer) eventWindow(events []*schedule.Event) (time.Time, time.Time) {
	minDate, maxDate := events[0].Date, events[0].Date
	for _, e := range events[1:] {
		if e.Date < minDate {
			minDate = e.Date
		}
		if e.Date > maxDate {
			maxDate = e.Date
		}
	}

	first := schedule.SerialToTime(minDate, s.loc)
	timeMin := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, s.loc)
	last := schedule.SerialToTime(maxDate, s.loc)
	timeMax := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, s.loc).
		Add(24*time.Hour - time.Second)
	return timeMin, timeMax
}

func (s *Syncer) logBuckets(calendarSummary string, buckets Buckets) {
	s.logger.Info("reconciled schedule against calendar",
		"calendar", calendarSummary,
		"synced", len(buckets.Synced),
		"update", len(buckets.Update),
		"create", len(buckets.Create),
		"delete", len(buckets.Delete))

	for _, pair := range buckets.Update {
		s.logger.Info("will update", "calendar", calendarSummary,
			"from", serializeEvent(pair.Observed, s.loc),
			"to", serializeEvent(pair.Desired, s.loc))
	}
	for _, pair := range buckets.Create {
		s.logger.Info("will create", "calendar", calendarSummary, "event", pair.Describe())
	}
	for _, pair := range buckets.Delete {
		s.logger.Info("will delete", "calendar", calendarSummary, "event", pair.Describe())
	}
}

// applyBuckets issues the mutating calls, one bucket at a time in the fixed
// order update, create, delete, and one pair at a time within each bucket. A
// failed pair does not stop the rest; the failures are aggregated once every
// pair has been attempted.
func (s *Syncer) applyBuckets(ctx context.Context, calendarID string, buckets Buckets) error {
	var pairs []*SyncPair
	var actions []SerialAction
	add := func(pair *SyncPair, action SerialAction) {
		pairs = append(pairs, pair)
		actions = append(actions, action)
	}

	for _, pair := range buckets.Update {
		pair := pair
		add(pair, func(ctx context.Context) error {
			return s.client.UpdateEvent(ctx, calendarID, pair.Observed.Id, pair.Desired)
		})
	}
	for _, pair := range buckets.Create {
		pair := pair
		add(pair, func(ctx context.Context) error {
			return s.client.InsertEvent(ctx, calendarID, pair.Desired)
		})
	}
	for _, pair := range buckets.Delete {
		pair := pair
		add(pair, func(ctx context.Context) error {
			return s.client.DeleteEvent(ctx, calendarID, pair.Observed.Id)
		})
	}

	var errs []error
	for i, err := range s.exec.Run(ctx, actions) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", pairs[i].Action(), pairs[i].Key, err))
		}
	}
	return errors.Join(errs...)
}
