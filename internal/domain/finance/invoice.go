// Package finance holds money-moving records: invoices, freelancer payouts and
// tax filings.
package finance

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// InvoiceLifecycle runs draft to paid; overdue is off the happy path
var InvoiceLifecycle = listing.Lifecycle{
	Order: []string{string(InvoiceStatusDraft), string(InvoiceStatusSent), string(InvoiceStatusPaid)},
	Other: []string{string(InvoiceStatusOverdue)},
}

// LineItem is one billed line of an invoice
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total is quantity times unit price
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

type Invoice struct {
	ID     string          `json:"id"`
	Number string          `json:"number"`
	Client string          `json:"client"`
	Brand  string          `json:"brand,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Status InvoiceStatus   `json:"status"`
	Issued string          `json:"issued,omitempty"`
	Due    string          `json:"due,omitempty"`
	Items  []LineItem      `json:"items,omitempty"`
	Notes  string          `json:"notes,omitempty"`
}

func (i Invoice) RecordID() string { return i.ID }

func (i Invoice) WithID(id string) Invoice {
	i.ID = id
	return i
}

func (i Invoice) RecordStatus() string { return string(i.Status) }

func (i Invoice) WithStatus(status string) Invoice {
	i.Status = InvoiceStatus(status)
	return i
}

// Outstanding reports whether the invoice still awaits payment.
func (i Invoice) Outstanding() bool {
	return i.Status == InvoiceStatusSent || i.Status == InvoiceStatusOverdue
}

// ItemsTotal sums the line items.
func (i Invoice) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range i.Items {
		total = total.Add(li.Total())
	}
	return total
}

func InvoiceSchema() *listing.Schema[Invoice] {
	return &listing.Schema[Invoice]{
		Name:         "invoices",
		Kind:         "invoice",
		IDPrefix:     "inv",
		Lifecycle:    InvoiceLifecycle,
		SearchFields: func(i Invoice) []string { return []string{i.Number, i.Client, i.Notes} },
		Brands:       func(i Invoice) []string { return []string{i.Brand} },
		Facets: map[string]func(Invoice) []string{
			"client": func(i Invoice) []string { return []string{i.Client} },
		},
		Sorts: map[string]listing.Comparator[Invoice]{
			"number": listing.Strings(func(i Invoice) string { return i.Number }),
			"amount": listing.Decimals(func(i Invoice) decimal.Decimal { return i.Amount }),
			"issued": listing.Strings(func(i Invoice) string { return i.Issued }),
			"due":    listing.Strings(func(i Invoice) string { return i.Due }),
		},
		Required: func(i Invoice) []string {
			missing := listing.RequireText("number", i.Number, "client", i.Client)
			if i.Amount.IsZero() && len(i.Items) == 0 {
				missing = append(missing, "amount")
			}
			return missing
		},
		Normalize: func(i Invoice) (Invoice, error) {
			if len(i.Items) > 0 {
				i.Amount = i.ItemsTotal()
			}
			return i, nil
		},
		Columns: []listing.Column[Invoice]{
			{Name: "id", Value: func(i Invoice) string { return i.ID }},
			{Name: "number", Value: func(i Invoice) string { return i.Number }},
			{Name: "client", Value: func(i Invoice) string { return i.Client }},
			{Name: "brand", Value: func(i Invoice) string { return i.Brand }},
			{Name: "amount", Value: func(i Invoice) string { return i.Amount.StringFixed(2) }},
			{Name: "status", Value: func(i Invoice) string { return string(i.Status) }},
			{Name: "issued", Value: func(i Invoice) string { return i.Issued }},
			{Name: "due", Value: func(i Invoice) string { return i.Due }},
		},
	}
}
