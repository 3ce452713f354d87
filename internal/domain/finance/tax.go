package finance

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

type TaxStatus string

const (
	TaxStatusUpcoming TaxStatus = "upcoming"
	TaxStatusPrepared TaxStatus = "prepared"
	TaxStatusFiled    TaxStatus = "filed"
	TaxStatusPaid     TaxStatus = "paid"
)

var TaxLifecycle = listing.Lifecycle{
	Order: []string{string(TaxStatusUpcoming), string(TaxStatusPrepared), string(TaxStatusFiled), string(TaxStatusPaid)},
}

// TaxFiling is one return or payment due to a tax authority
type TaxFiling struct {
	ID           string          `json:"id"`
	Jurisdiction string          `json:"jurisdiction"`
	Period       string          `json:"period"`
	Kind         string          `json:"kind,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Status       TaxStatus       `json:"status"`
	Due          string          `json:"due,omitempty"`
}

func (f TaxFiling) RecordID() string { return f.ID }

func (f TaxFiling) WithID(id string) TaxFiling {
	f.ID = id
	return f
}

func (f TaxFiling) RecordStatus() string { return string(f.Status) }

func (f TaxFiling) WithStatus(status string) TaxFiling {
	f.Status = TaxStatus(status)
	return f
}

// Settled reports whether the filing no longer counts as due.
func (f TaxFiling) Settled() bool {
	return f.Status == TaxStatusFiled || f.Status == TaxStatusPaid
}

func TaxSchema() *listing.Schema[TaxFiling] {
	return &listing.Schema[TaxFiling]{
		Name:         "tax",
		Kind:         "tax filing",
		IDPrefix:     "tax",
		Lifecycle:    TaxLifecycle,
		SearchFields: func(f TaxFiling) []string { return []string{f.Jurisdiction, f.Period, f.Kind} },
		Brands:       func(f TaxFiling) []string { return []string{f.Brand} },
		Facets: map[string]func(TaxFiling) []string{
			"jurisdiction": func(f TaxFiling) []string { return []string{f.Jurisdiction} },
			"kind":         func(f TaxFiling) []string { return []string{f.Kind} },
		},
		Sorts: map[string]listing.Comparator[TaxFiling]{
			"due":    listing.Strings(func(f TaxFiling) string { return f.Due }),
			"amount": listing.Decimals(func(f TaxFiling) decimal.Decimal { return f.Amount }),
		},
		Required: func(f TaxFiling) []string {
			return listing.RequireText("jurisdiction", f.Jurisdiction, "period", f.Period)
		},
		Columns: []listing.Column[TaxFiling]{
			{Name: "id", Value: func(f TaxFiling) string { return f.ID }},
			{Name: "jurisdiction", Value: func(f TaxFiling) string { return f.Jurisdiction }},
			{Name: "period", Value: func(f TaxFiling) string { return f.Period }},
			{Name: "kind", Value: func(f TaxFiling) string { return f.Kind }},
			{Name: "amount", Value: func(f TaxFiling) string { return f.Amount.StringFixed(2) }},
			{Name: "status", Value: func(f TaxFiling) string { return string(f.Status) }},
			{Name: "due", Value: func(f TaxFiling) string { return f.Due }},
		},
	}
}
