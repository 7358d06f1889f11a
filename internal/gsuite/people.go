package gsuite

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/redeemerbc/schedule-sync/internal/schedule"

	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// PeopleClient wraps the Google People API contacts listing.
type PeopleClient struct {
	service *people.Service
}

// NewPeopleClient creates a People client over an authenticated HTTP client.
func NewPeopleClient(ctx context.Context, httpClient *http.Client) (*PeopleClient, error) {
	service, err := people.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create people service: %w", err)
	}
	return &PeopleClient{service: service}, nil
}

// Contacts lists the authenticated account's contacts as directory entries,
// keeping only those with both a display name and an email address.
func (c *PeopleClient) Contacts(ctx context.Context) ([]schedule.Person, error) {
	var contacts []schedule.Person
	pageToken := ""
	for {
		call := c.service.People.Connections.List("people/me").
			PersonFields("names,emailAddresses").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list contacts: %w", err)
		}

		for _, person := range resp.Connections {
			if len(person.Names) == 0 || len(person.EmailAddresses) == 0 {
				continue
			}
			contacts = append(contacts, schedule.Person{
				FullName: person.Names[0].DisplayName,
				Email:    person.EmailAddresses[0].Value,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return contacts, nil
		}
	}
}

// PeopleMapper maps among the ways GSuite products describe people: some use
// email addresses, others display names. Lookups are case-insensitive.
type PeopleMapper struct {
	byFullName map[string]schedule.Person
	byEmail    map[string]schedule.Person
}

// NewPeopleMapper indexes a list of directory entries by full name and by
// email. Later entries win on duplicate keys.
func NewPeopleMapper(contacts []schedule.Person) *PeopleMapper {
	m := &PeopleMapper{
		byFullName: make(map[string]schedule.Person, len(contacts)),
		byEmail:    make(map[string]schedule.Person, len(contacts)),
	}
	for _, person := range contacts {
		m.byFullName[strings.ToLower(person.FullName)] = person
		m.byEmail[strings.ToLower(person.Email)] = person
	}
	return m
}

// PersonByFullName looks up a contact by the full name written in the sheet.
func (m *PeopleMapper) PersonByFullName(name string) (schedule.Person, bool) {
	person, ok := m.byFullName[strings.ToLower(name)]
	return person, ok
}

// PersonByEmail looks up a contact by email address.
func (m *PeopleMapper) PersonByEmail(email string) (schedule.Person, bool) {
	person, ok := m.byEmail[strings.ToLower(email)]
	return person, ok
}
