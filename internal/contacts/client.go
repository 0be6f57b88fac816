package contacts

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"

	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/scheduling"
)

const (
	// PageSize is the number of connections requested per page.
	PageSize = 1000

	personFields = "names,emailAddresses,phoneNumbers"
)

// Contact is a simplified connection of the account. Each field holds the
// first value the person has, or "" when they have none.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Client wraps the Google People service
type Client struct {
	svc     *people.Service
	account string
	metrics *instrumentation.Metrics
}

// NewClient creates a People client for account. metrics may be nil.
func NewClient(ctx context.Context, account string, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return &Client{svc: svc, account: account, metrics: metrics}, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// ListContacts returns all connections of the account, following every page.
func (c *Client) ListContacts(ctx context.Context) ([]Contact, error) {
	ctx, done := instrumentation.TrackGoogleAPI(ctx, c.metrics, instrumentation.ServicePeople, instrumentation.OperationList)

	contacts := make([]Contact, 0)
	err := c.svc.People.Connections.List("people/me").
		PageSize(PageSize).
		PersonFields(personFields).
		Pages(ctx, func(resp *people.ListConnectionsResponse) error {
			for _, person := range resp.Connections {
				if person == nil {
					continue
				}
				contacts = append(contacts, toContact(person))
			}
			return nil
		})
	done(err)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list contacts: %w", scheduling.ErrUpstream, err)
	}

	return contacts, nil
}

func toContact(person *people.Person) Contact {
	contact := Contact{ID: person.ResourceName}

	if len(person.Names) > 0 {
		contact.Name = person.Names[0].DisplayName
	}
	if len(person.EmailAddresses) > 0 {
		contact.Email = person.EmailAddresses[0].Value
	}
	if len(person.PhoneNumbers) > 0 {
		contact.Phone = person.PhoneNumbers[0].Value
	}

	return contact
}
