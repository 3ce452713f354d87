package crm

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

// CampaignStatus tracks a marketing campaign from plan to wrap-up
type CampaignStatus string

const (
	CampaignStatusPlanned   CampaignStatus = "planned"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusLive      CampaignStatus = "live"
	CampaignStatusCompleted CampaignStatus = "completed"
)

var CampaignLifecycle = listing.Lifecycle{
	Order: []string{
		string(CampaignStatusPlanned), string(CampaignStatusScheduled),
		string(CampaignStatusLive), string(CampaignStatusCompleted),
	},
}

type Campaign struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Brand   string          `json:"brand,omitempty"`
	Channel string          `json:"channel"`
	Status  CampaignStatus  `json:"status"`
	Budget  decimal.Decimal `json:"budget"`
	Spent   decimal.Decimal `json:"spent"`
	Start   string          `json:"start,omitempty"`
	End     string          `json:"end,omitempty"`
	Owner   string          `json:"owner,omitempty"`
}

func (c Campaign) RecordID() string { return c.ID }

func (c Campaign) WithID(id string) Campaign {
	c.ID = id
	return c
}

func (c Campaign) RecordStatus() string { return string(c.Status) }

func (c Campaign) WithStatus(status string) Campaign {
	c.Status = CampaignStatus(status)
	return c
}

func CampaignSchema() *listing.Schema[Campaign] {
	return &listing.Schema[Campaign]{
		Name:         "campaigns",
		Kind:         "campaign",
		IDPrefix:     "cmp",
		Lifecycle:    CampaignLifecycle,
		SearchFields: func(c Campaign) []string { return []string{c.Name, c.Owner} },
		Brands:       func(c Campaign) []string { return []string{c.Brand} },
		Facets: map[string]func(Campaign) []string{
			"channel": func(c Campaign) []string { return []string{c.Channel} },
		},
		Sorts: map[string]listing.Comparator[Campaign]{
			"name":   listing.Strings(func(c Campaign) string { return c.Name }),
			"budget": listing.Decimals(func(c Campaign) decimal.Decimal { return c.Budget }),
			"start":  listing.Strings(func(c Campaign) string { return c.Start }),
		},
		Required: func(c Campaign) []string {
			return listing.RequireText("name", c.Name, "channel", c.Channel)
		},
		Columns: []listing.Column[Campaign]{
			{Name: "id", Value: func(c Campaign) string { return c.ID }},
			{Name: "name", Value: func(c Campaign) string { return c.Name }},
			{Name: "brand", Value: func(c Campaign) string { return c.Brand }},
			{Name: "channel", Value: func(c Campaign) string { return c.Channel }},
			{Name: "status", Value: func(c Campaign) string { return string(c.Status) }},
			{Name: "budget", Value: func(c Campaign) string { return c.Budget.StringFixed(2) }},
			{Name: "spent", Value: func(c Campaign) string { return c.Spent.StringFixed(2) }},
			{Name: "start", Value: func(c Campaign) string { return c.Start }},
		},
	}
}
