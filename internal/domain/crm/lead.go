// Package crm holds the sales-side records: pipeline leads, clients and campaigns.
package crm

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

// LeadStage is a pipeline column
type LeadStage string

const (
	LeadStageNew         LeadStage = "new"
	LeadStageContacted   LeadStage = "contacted"
	LeadStageProposal    LeadStage = "proposal"
	LeadStageNegotiation LeadStage = "negotiation"
	LeadStageWon         LeadStage = "won"
	LeadStageLost        LeadStage = "lost"
)

// LeadLifecycle is the pipeline stage order. Lost sits outside it.
var LeadLifecycle = listing.Lifecycle{
	Order: []string{
		string(LeadStageNew), string(LeadStageContacted), string(LeadStageProposal),
		string(LeadStageNegotiation), string(LeadStageWon),
	},
	Other: []string{string(LeadStageLost)},
}

// Lead is a pipeline opportunity
type Lead struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Company string          `json:"company"`
	Email   string          `json:"email,omitempty"`
	Source  string          `json:"source,omitempty"`
	Owner   string          `json:"owner,omitempty"`
	Brand   string          `json:"brand,omitempty"`
	Stage   LeadStage       `json:"stage"`
	Value   decimal.Decimal `json:"value"`
	Created string          `json:"created,omitempty"`
	Notes   string          `json:"notes,omitempty"`
}

func (l Lead) RecordID() string { return l.ID }

func (l Lead) WithID(id string) Lead {
	l.ID = id
	return l
}

func (l Lead) RecordStatus() string { return string(l.Stage) }

func (l Lead) WithStatus(status string) Lead {
	l.Stage = LeadStage(status)
	return l
}

// IsOpen reports whether the lead is still being worked.
func (l Lead) IsOpen() bool {
	return l.Stage != LeadStageWon && l.Stage != LeadStageLost
}

// LeadSchema describes the pipeline module
func LeadSchema() *listing.Schema[Lead] {
	return &listing.Schema[Lead]{
		Name:      "pipeline",
		Kind:      "lead",
		IDPrefix:  "lead",
		Lifecycle: LeadLifecycle,
		SearchFields: func(l Lead) []string {
			return []string{l.Name, l.Company, l.Email, l.Notes}
		},
		Brands: func(l Lead) []string { return []string{l.Brand} },
		Facets: map[string]func(Lead) []string{
			"source": func(l Lead) []string { return []string{l.Source} },
			"owner":  func(l Lead) []string { return []string{l.Owner} },
		},
		Sorts: map[string]listing.Comparator[Lead]{
			"name":    listing.Strings(func(l Lead) string { return l.Name }),
			"company": listing.Strings(func(l Lead) string { return l.Company }),
			"value":   listing.Decimals(func(l Lead) decimal.Decimal { return l.Value }),
			"created": listing.Strings(func(l Lead) string { return l.Created }),
		},
		Required: func(l Lead) []string {
			return listing.RequireText("name", l.Name, "company", l.Company)
		},
		Columns: []listing.Column[Lead]{
			{Name: "id", Value: func(l Lead) string { return l.ID }},
			{Name: "name", Value: func(l Lead) string { return l.Name }},
			{Name: "company", Value: func(l Lead) string { return l.Company }},
			{Name: "brand", Value: func(l Lead) string { return l.Brand }},
			{Name: "stage", Value: func(l Lead) string { return string(l.Stage) }},
			{Name: "value", Value: func(l Lead) string { return l.Value.StringFixed(2) }},
			{Name: "owner", Value: func(l Lead) string { return l.Owner }},
			{Name: "created", Value: func(l Lead) string { return l.Created }},
		},
	}
}
