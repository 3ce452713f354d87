// Package legal holds contracts with clients and contractors and the agency's
// internal policies.
package legal

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusDraft   ContractStatus = "draft"
	ContractStatusSent    ContractStatus = "sent"
	ContractStatusSigned  ContractStatus = "signed"
	ContractStatusExpired ContractStatus = "expired"
)

var ContractLifecycle = listing.Lifecycle{
	Order: []string{string(ContractStatusDraft), string(ContractStatusSent), string(ContractStatusSigned)},
	Other: []string{string(ContractStatusExpired)},
}

type Contract struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Party  string          `json:"party"`
	Kind   string          `json:"kind,omitempty"`
	Brand  string          `json:"brand,omitempty"`
	Value  decimal.Decimal `json:"value"`
	Status ContractStatus  `json:"status"`
	Start  string          `json:"start,omitempty"`
	End    string          `json:"end,omitempty"`
}

func (c Contract) RecordID() string { return c.ID }

func (c Contract) WithID(id string) Contract {
	c.ID = id
	return c
}

func (c Contract) RecordStatus() string { return string(c.Status) }

func (c Contract) WithStatus(status string) Contract {
	c.Status = ContractStatus(status)
	return c
}

func ContractSchema() *listing.Schema[Contract] {
	return &listing.Schema[Contract]{
		Name:         "contracts",
		Kind:         "contract",
		IDPrefix:     "ctr",
		Lifecycle:    ContractLifecycle,
		SearchFields: func(c Contract) []string { return []string{c.Title, c.Party} },
		Brands:       func(c Contract) []string { return []string{c.Brand} },
		Facets: map[string]func(Contract) []string{
			"kind":  func(c Contract) []string { return []string{c.Kind} },
			"party": func(c Contract) []string { return []string{c.Party} },
		},
		Sorts: map[string]listing.Comparator[Contract]{
			"title": listing.Strings(func(c Contract) string { return c.Title }),
			"value": listing.Decimals(func(c Contract) decimal.Decimal { return c.Value }),
			"start": listing.Strings(func(c Contract) string { return c.Start }),
			"end":   listing.Strings(func(c Contract) string { return c.End }),
		},
		Required: func(c Contract) []string {
			return listing.RequireText("title", c.Title, "party", c.Party)
		},
		Columns: []listing.Column[Contract]{
			{Name: "id", Value: func(c Contract) string { return c.ID }},
			{Name: "title", Value: func(c Contract) string { return c.Title }},
			{Name: "party", Value: func(c Contract) string { return c.Party }},
			{Name: "kind", Value: func(c Contract) string { return c.Kind }},
			{Name: "value", Value: func(c Contract) string { return c.Value.StringFixed(2) }},
			{Name: "status", Value: func(c Contract) string { return string(c.Status) }},
			{Name: "start", Value: func(c Contract) string { return c.Start }},
			{Name: "end", Value: func(c Contract) string { return c.End }},
		},
	}
}
