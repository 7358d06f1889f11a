package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/redeemerbc/schedule-sync/internal/schedule"
)

// fakeCalendarClient implements gsuite.CalendarClient and records every
// mutating call.
type fakeCalendarClient struct {
	calendar *calendar.Calendar
	events   []*calendar.Event

	insertErr error
	updateErr error
	deleteErr error

	inserted  []*calendar.Event
	updated   map[string]*calendar.Event
	deleted   []string
	callOrder []string
}

func newFakeCalendarClient(summary string, events ...*calendar.Event) *fakeCalendarClient {
	return &fakeCalendarClient{
		calendar: &calendar.Calendar{Summary: summary},
		events:   events,
		updated:  make(map[string]*calendar.Event),
	}
}

func (c *fakeCalendarClient) GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error) {
	return c.calendar, nil
}

func (c *fakeCalendarClient) GetEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	return c.events, nil
}

func (c *fakeCalendarClient) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) error {
	c.callOrder = append(c.callOrder, "insert")
	if c.insertErr != nil {
		return c.insertErr
	}
	c.inserted = append(c.inserted, event)
	return nil
}

func (c *fakeCalendarClient) UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) error {
	c.callOrder = append(c.callOrder, "update")
	if c.updateErr != nil {
		return c.updateErr
	}
	c.updated[eventID] = event
	return nil
}

func (c *fakeCalendarClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	c.callOrder = append(c.callOrder, "delete")
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, eventID)
	return nil
}

type fakeDirectory map[string]string

func (d fakeDirectory) PersonByFullName(name string) (schedule.Person, bool) {
	email, ok := d[strings.ToLower(name)]
	if !ok {
		return schedule.Person{}, false
	}
	return schedule.Person{FullName: name, Email: email}, true
}

const kidsCalendarLink = `=HYPERLINK("https://calendar.google.com/calendar?cid=a2lkc0BleGFtcGxlLmNvbQ==","Kids Ministry")`

// kidsGroup builds a one-schedule group with a 10:30 to 12:00 slot on
// 2021-01-01 rostering Alice.
func kidsGroup(t *testing.T) []*schedule.Schedule {
	t.Helper()
	header := schedule.NewHeader(
		[]any{"Calendar", "Start", "End", "Location"},
		[]any{kidsCalendarLink, 0.4375, 0.5, "Room 2"},
	)
	sched, err := schedule.NewSchedule([]any{44197.0}, []any{"Alice"}, header)
	if err != nil {
		t.Fatalf("Failed to build schedule: %v", err)
	}
	return []*schedule.Schedule{sched}
}

// kidsObserved is the live-calendar rendering of kidsGroup's single event.
func kidsObserved(id string) *calendar.Event {
	return &calendar.Event{
		Id:      id,
		Summary: "Kids - Kids Ministry",
		Start:   &calendar.EventDateTime{DateTime: "2021-01-01T10:30:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2021-01-01T12:00:00Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "alice@example.com"},
		},
	}
}

func newTestSyncer(client *fakeCalendarClient, dryRun bool) *Syncer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := fakeDirectory{"alice": "alice@example.com"}
	return NewSyncer(logger, client, directory, time.UTC, dryRun, 0)
}

func TestSyncGroup_CreatesMissingEvent(t *testing.T) {
	client := newFakeCalendarClient("Kids")
	syncer := newTestSyncer(client, false)

	if err := syncer.SyncGroup(context.Background(), "kids@example.com", kidsGroup(t)); err != nil {
		t.Fatalf("SyncGroup failed: %v", err)
	}

	if len(client.inserted) != 1 {
		t.Fatalf("Expected 1 inserted event, got %d", len(client.inserted))
	}
	event := client.inserted[0]
	if event.Summary != "Kids - Kids Ministry" {
		t.Errorf("Inserted summary = %q", event.Summary)
	}
	if event.Start.DateTime != "2021-01-01T10:30:00Z" {
		t.Errorf("Inserted start = %q", event.Start.DateTime)
	}
	if len(client.updated) != 0 || len(client.deleted) != 0 {
		t.Error("Expected no updates or deletes")
	}
}

func TestSyncGroup_UpdatesChangedEvent(t *testing.T) {
	observed := kidsObserved("evt-1")
	observed.Attendees = []*calendar.EventAttendee{{Email: "bob@example.com"}}
	client := newFakeCalendarClient("Kids", observed)
	syncer := newTestSyncer(client, false)

	if err := syncer.SyncGroup(context.Background(), "kids@example.com", kidsGroup(t)); err != nil {
		t.Fatalf("SyncGroup failed: %v", err)
	}

	updated, ok := client.updated["evt-1"]
	if !ok {
		t.Fatalf("Expected event evt-1 to be updated, got %v", client.updated)
	}
	if len(updated.Attendees) != 1 || updated.Attendees[0].Email != "alice@example.com" {
		t.Errorf("Updated attendees = %v", updated.Attendees)
	}
	if len(client.inserted) != 0 || len(client.deleted) != 0 {
		t.Error("Expected no inserts or deletes")
	}
}

func TestSyncGroup_DeletesStaleEvent(t *testing.T) {
	stale := kidsObserved("evt-stale")
	stale.Summary = "Kids - Cancelled Series"
	client := newFakeCalendarClient("Kids", kidsObserved("evt-1"), stale)
	syncer := newTestSyncer(client, false)

	if err := syncer.SyncGroup(context.Background(), "kids@example.com", kidsGroup(t)); err != nil {
		t.Fatalf("SyncGroup failed: %v", err)
	}

	if len(client.deleted) != 1 || client.deleted[0] != "evt-stale" {
		t.Errorf("Expected evt-stale to be deleted, got %v", client.deleted)
	}
	if len(client.inserted) != 0 || len(client.updated) != 0 {
		t.Error("Expected the matching event to be left alone")
	}
}

func TestSyncGroup_SyncedEventUntouched(t *testing.T) {
	client := newFakeCalendarClient("Kids", kidsObserved("evt-1"))
	syncer := newTestSyncer(client, false)

	if err := syncer.SyncGroup(context.Background(), "kids@example.com", kidsGroup(t)); err != nil {
		t.Fatalf("SyncGroup failed: %v", err)
	}

	if len(client.callOrder) != 0 {
		t.Errorf("Expected no mutating calls, got %v", client.callOrder)
	}
}

func TestSyncGroup_DryRunMakesNoChanges(t *testing.T) {
	observed := kidsObserved("evt-1")
	observed.Attendees = nil
	stale := kidsObserved("evt-stale")
	stale.Summary = "Kids - Cancelled Series"
	client := newFakeCalendarClient("Kids", observed, stale)
	syncer := newTestSyncer(client, true)

	if err := syncer.SyncGroup(context.Background(), "kids@example.com", kidsGroup(t)); err != nil {
		t.Fatalf("SyncGroup failed: %v", err)
	}

	if len(client.callOrder) != 0 {
		t.Errorf("Expected dry run to make no mutating calls, got %v", client.callOrder)
	}
}

func TestSyncGroup_AppliesUpdatesThenCreatesThenDeletes(t *testing.T) {
	observed := kidsObserved("evt-1")
	observed.Attendees = nil
	stale := kidsObserved("evt-stale")
	stale.Summary = "Kids - Cancelled Series"
	client := newFakeCalendarClient("Kids", observed, stale)
	syncer := newTestSyncer(client, false)

	group := kidsGroup(t)
	// A second desired day with no observed counterpart forces a create
	// alongside the update and delete.
	header := schedule.NewHeader(
		[]any{"Calendar", "Start", "End"},
		[]any{kidsCalendarLink, 0.4375, 0.5},
	)
	extra, err := schedule.NewSchedule([]any{44198.0}, []any{"Alice"}, header)
	if err != nil {
		t.Fatalf("Failed to build schedule: %v", err)
	}
	group = append(group, extra)

	if err := syncer.SyncGroup(context.Background(), "kids@example.com", group); err != nil {
		t.Fatalf("SyncGroup failed: %v", err)
	}

	want := []string{"update", "insert", "delete"}
	if len(client.callOrder) != len(want) {
		t.Fatalf("Call order = %v, want %v", client.callOrder, want)
	}
	for i := range want {
		if client.callOrder[i] != want[i] {
			t.Fatalf("Call order = %v, want %v", client.callOrder, want)
		}
	}
}

func TestSyncGroup_ContinuesPastFailures(t *testing.T) {
	observed := kidsObserved("evt-1")
	observed.Attendees = nil
	stale := kidsObserved("evt-stale")
	stale.Summary = "Kids - Cancelled Series"
	client := newFakeCalendarClient("Kids", observed, stale)
	client.updateErr = errors.New("update quota exceeded")
	syncer := newTestSyncer(client, false)

	err := syncer.SyncGroup(context.Background(), "kids@example.com", kidsGroup(t))
	if err == nil {
		t.Fatal("Expected the update failure to surface")
	}
	if !strings.Contains(err.Error(), "update quota exceeded") {
		t.Errorf("Error %q does not mention the cause", err)
	}
	if len(client.deleted) != 1 {
		t.Errorf("Expected the delete to run despite the update failure, got %v", client.deleted)
	}
}

func TestSyncGroup_EmptyGroupSkipsCalendar(t *testing.T) {
	client := newFakeCalendarClient("Kids")
	syncer := newTestSyncer(client, false)

	if err := syncer.SyncGroup(context.Background(), "kids@example.com", nil); err != nil {
		t.Fatalf("SyncGroup failed: %v", err)
	}
	if len(client.callOrder) != 0 {
		t.Errorf("Expected no calls for an empty group, got %v", client.callOrder)
	}
}
