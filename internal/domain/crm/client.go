package crm

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

// ClientStatus is the account state of a client
type ClientStatus string

const (
	ClientStatusProspect ClientStatus = "prospect"
	ClientStatusActive   ClientStatus = "active"
	ClientStatusPaused   ClientStatus = "paused"
	ClientStatusChurned  ClientStatus = "churned"
)

var ClientLifecycle = listing.Lifecycle{
	Order: []string{string(ClientStatusProspect), string(ClientStatusActive)},
	Other: []string{string(ClientStatusPaused), string(ClientStatusChurned)},
}

// Client is an account the agency works for. A client may span several brands.
type Client struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Industry string          `json:"industry,omitempty"`
	Contact  string          `json:"contact,omitempty"`
	Email    string          `json:"email,omitempty"`
	Brands   []string        `json:"brands,omitempty"`
	Status   ClientStatus    `json:"status"`
	MRR      decimal.Decimal `json:"mrr"`
	Since    string          `json:"since,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
}

func (c Client) RecordID() string { return c.ID }

func (c Client) WithID(id string) Client {
	c.ID = id
	return c
}

func (c Client) RecordStatus() string { return string(c.Status) }

func (c Client) WithStatus(status string) Client {
	c.Status = ClientStatus(status)
	return c
}

func ClientSchema() *listing.Schema[Client] {
	return &listing.Schema[Client]{
		Name:      "clients",
		Kind:      "client",
		IDPrefix:  "client",
		Lifecycle: ClientLifecycle,
		SearchFields: func(c Client) []string {
			return []string{c.Name, c.Contact, c.Email, c.Industry}
		},
		Brands: func(c Client) []string { return c.Brands },
		Facets: map[string]func(Client) []string{
			"industry": func(c Client) []string { return []string{c.Industry} },
			"tag":      func(c Client) []string { return c.Tags },
		},
		Sorts: map[string]listing.Comparator[Client]{
			"name":  listing.Strings(func(c Client) string { return c.Name }),
			"mrr":   listing.Decimals(func(c Client) decimal.Decimal { return c.MRR }),
			"since": listing.Strings(func(c Client) string { return c.Since }),
		},
		Required: func(c Client) []string {
			return listing.RequireText("name", c.Name)
		},
		Columns: []listing.Column[Client]{
			{Name: "id", Value: func(c Client) string { return c.ID }},
			{Name: "name", Value: func(c Client) string { return c.Name }},
			{Name: "industry", Value: func(c Client) string { return c.Industry }},
			{Name: "status", Value: func(c Client) string { return string(c.Status) }},
			{Name: "mrr", Value: func(c Client) string { return c.MRR.StringFixed(2) }},
			{Name: "since", Value: func(c Client) string { return c.Since }},
		},
	}
}
