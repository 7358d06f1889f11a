package gsuite

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarClient is the calendar surface the syncer needs. The Google
// implementation below is the production one; tests substitute fakes.
type CalendarClient interface {
	GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error)
	GetEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) error
	UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// GoogleCalendarClient wraps the Google Calendar API service.
type GoogleCalendarClient struct {
	service *calendar.Service
}

// NewCalendarClient creates a Google Calendar client over an authenticated
// HTTP client.
func NewCalendarClient(ctx context.Context, httpClient *http.Client) (*GoogleCalendarClient, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleCalendarClient{service: service}, nil
}

// GetCalendar retrieves a calendar's metadata (its summary names the events
// synced into it).
func (c *GoogleCalendarClient) GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error) {
	cal, err := c.service.Calendars.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar %s: %w", calendarID, err)
	}
	return cal, nil
}

// GetEvents retrieves events within the time window, with recurring events
// expanded to single instances.
func (c *GoogleCalendarClient) GetEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var events []*calendar.Event
	pageToken := ""
	for {
		call := c.service.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		events = append(events, list.Items...)

		pageToken = list.NextPageToken
		if pageToken == "" {
			return events, nil
		}
	}
}

// InsertEvent inserts a new event without notifying attendees.
func (c *GoogleCalendarClient) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) error {
	_, err := c.service.Events.Insert(calendarID, event).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// UpdateEvent replaces an existing event. Attendees are notified, since an
// update means their assignment changed.
func (c *GoogleCalendarClient) UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) error {
	_, err := c.service.Events.Update(calendarID, eventID, event).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return nil
}

// DeleteEvent removes an event without notifying attendees.
func (c *GoogleCalendarClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.service.Events.Delete(calendarID, eventID).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}
