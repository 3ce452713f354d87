package finance

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusApproved PayoutStatus = "approved"
	PayoutStatusPaid     PayoutStatus = "paid"
)

var PayoutLifecycle = listing.Lifecycle{
	Order: []string{string(PayoutStatusPending), string(PayoutStatusApproved), string(PayoutStatusPaid)},
}

// Payout is money owed to a freelancer for project work
type Payout struct {
	ID         string          `json:"id"`
	Freelancer string          `json:"freelancer"`
	Project    string          `json:"project,omitempty"`
	Brand      string          `json:"brand,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     PayoutStatus    `json:"status"`
	Requested  string          `json:"requested,omitempty"`
	Method     string          `json:"method,omitempty"`
}

func (p Payout) RecordID() string { return p.ID }

func (p Payout) WithID(id string) Payout {
	p.ID = id
	return p
}

func (p Payout) RecordStatus() string { return string(p.Status) }

func (p Payout) WithStatus(status string) Payout {
	p.Status = PayoutStatus(status)
	return p
}

func PayoutSchema() *listing.Schema[Payout] {
	return &listing.Schema[Payout]{
		Name:         "payouts",
		Kind:         "payout",
		IDPrefix:     "pay",
		Lifecycle:    PayoutLifecycle,
		SearchFields: func(p Payout) []string { return []string{p.Freelancer, p.Project} },
		Brands:       func(p Payout) []string { return []string{p.Brand} },
		Facets: map[string]func(Payout) []string{
			"freelancer": func(p Payout) []string { return []string{p.Freelancer} },
			"method":     func(p Payout) []string { return []string{p.Method} },
		},
		Sorts: map[string]listing.Comparator[Payout]{
			"amount":    listing.Decimals(func(p Payout) decimal.Decimal { return p.Amount }),
			"requested": listing.Strings(func(p Payout) string { return p.Requested }),
		},
		Required: func(p Payout) []string {
			missing := listing.RequireText("freelancer", p.Freelancer)
			if p.Amount.IsZero() {
				missing = append(missing, "amount")
			}
			return missing
		},
		Columns: []listing.Column[Payout]{
			{Name: "id", Value: func(p Payout) string { return p.ID }},
			{Name: "freelancer", Value: func(p Payout) string { return p.Freelancer }},
			{Name: "project", Value: func(p Payout) string { return p.Project }},
			{Name: "amount", Value: func(p Payout) string { return p.Amount.StringFixed(2) }},
			{Name: "status", Value: func(p Payout) string { return string(p.Status) }},
			{Name: "requested", Value: func(p Payout) string { return p.Requested }},
		},
	}
}
