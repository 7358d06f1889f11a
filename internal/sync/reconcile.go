package sync

import (
	"sort"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
)

// Action is the sync operation a pair of events requires.
type Action string

const (
	ActionSynced Action = "synced"
	ActionUpdate Action = "update"
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
)

// SyncPair groups at most one desired event (derived from the spreadsheet,
// no ID) and at most one observed event (fetched from the calendar, carries
// the externally assigned ID) sharing an identity key.
type SyncPair struct {
	Key      string
	Desired  *calendar.Event
	Observed *calendar.Event

	loc *time.Location
}

// Action classifies the pair. Priority order: an observed event with no
// desired counterpart is deleted, a desired event with no observed
// counterpart is created, a pair whose canonical serializations differ is
// updated, and anything else is already synced.
func (p *SyncPair) Action() Action {
	switch {
	case p.Desired == nil:
		return ActionDelete
	case p.Observed == nil:
		return ActionCreate
	case serializeEvent(p.Desired, p.loc) != serializeEvent(p.Observed, p.loc):
		return ActionUpdate
	default:
		return ActionSynced
	}
}

// Describe renders the pair for logging, preferring the desired side.
func (p *SyncPair) Describe() string {
	if p.Desired != nil {
		return serializeEvent(p.Desired, p.loc)
	}
	return serializeEvent(p.Observed, p.loc)
}

// Buckets holds the classified pairs. All four buckets are always present,
// possibly empty, and together they partition the pairs exactly.
type Buckets struct {
	Synced []*SyncPair
	Update []*SyncPair
	Create []*SyncPair
	Delete []*SyncPair
}

// Reconciler pairs desired and observed events for one calendar by identity
// key and classifies each pair into an action bucket. It performs no side
// effects; applying the buckets is the Syncer's job.
type Reconciler struct {
	loc   *time.Location
	order []string
	pairs map[string]*SyncPair
}

// NewReconciler creates a Reconciler that interprets event times in loc.
func NewReconciler(loc *time.Location) *Reconciler {
	return &Reconciler{loc: loc, pairs: make(map[string]*SyncPair)}
}

// Add slots an event into its sync pair. An event carrying an ID fills the
// observed slot, one without fills the desired slot; each event contributes
// to exactly one slot of exactly one pair. Duplicate events sharing a key
// overwrite the slot, last write wins, so only the final duplicate is
// classified.
// TODO: slot surplus observed duplicates into the delete bucket so manually
// duplicated calendar entries get cleaned up instead of ignored.
func (r *Reconciler) Add(event *calendar.Event) {
	key := eventKey(event, r.loc)
	pair, ok := r.pairs[key]
	if !ok {
		pair = &SyncPair{Key: key, loc: r.loc}
		r.pairs[key] = pair
		r.order = append(r.order, key)
	}

	if event.Id != "" {
		pair.Observed = event
	} else {
		pair.Desired = event
	}
}

// Pairs returns all sync pairs in insertion order.
func (r *Reconciler) Pairs() []*SyncPair {
	pairs := make([]*SyncPair, 0, len(r.order))
	for _, key := range r.order {
		pairs = append(pairs, r.pairs[key])
	}
	return pairs
}

// Buckets classifies every pair into exactly one action bucket, preserving
// insertion order within each bucket.
func (r *Reconciler) Buckets() Buckets {
	var b Buckets
	for _, pair := range r.Pairs() {
		switch pair.Action() {
		case ActionUpdate:
			b.Update = append(b.Update, pair)
		case ActionCreate:
			b.Create = append(b.Create, pair)
		case ActionDelete:
			b.Delete = append(b.Delete, pair)
		default:
			b.Synced = append(b.Synced, pair)
		}
	}
	return b
}

// eventKey builds the identity key shared by a desired event and its observed
// counterpart: the event label plus the start of its day.
func eventKey(event *calendar.Event, loc *time.Location) string {
	start := eventTime(event.Start, loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	return event.Summary + " - " + day.Format("2006-01-02")
}

// serializeEvent renders an event's compared fields as one canonical string,
// the unit of change detection: label, UTC start and end, sorted attendee
// emails, and description, with newlines flattened.
func serializeEvent(event *calendar.Event, loc *time.Location) string {
	emails := make([]string, 0, len(event.Attendees))
	for _, a := range event.Attendees {
		emails = append(emails, a.Email)
	}
	sort.Strings(emails)

	s := event.Summary +
		"-" + eventTime(event.Start, loc).UTC().Format(time.RFC3339) +
		"-" + eventTime(event.End, loc).UTC().Format(time.RFC3339) +
		"-" + strings.Join(emails, ",") +
		"-" + event.Description
	return strings.ReplaceAll(s, "\n", " ")
}

// eventTime parses either side of an EventDateTime: a timed RFC3339 value or
// an all-day date, interpreted in loc.
func eventTime(edt *calendar.EventDateTime, loc *time.Location) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", edt.Date, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
