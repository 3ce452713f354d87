package legal

import "github.com/agencyos/backend/internal/domain/shared/listing"

type PolicyStatus string

const (
	PolicyStatusDraft       PolicyStatus = "draft"
	PolicyStatusUnderReview PolicyStatus = "under_review"
	PolicyStatusActive      PolicyStatus = "active"
	PolicyStatusRetired     PolicyStatus = "retired"
)

var PolicyLifecycle = listing.Lifecycle{
	Order: []string{
		string(PolicyStatusDraft), string(PolicyStatusUnderReview),
		string(PolicyStatusActive), string(PolicyStatusRetired),
	},
}

// Policy is an internal rule book entry (security, expenses, brand usage...)
type Policy struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Category  string       `json:"category,omitempty"`
	Owner     string       `json:"owner"`
	Status    PolicyStatus `json:"status"`
	Effective string       `json:"effective,omitempty"`
	Version   string       `json:"version,omitempty"`
	Summary   string       `json:"summary,omitempty"`
}

func (p Policy) RecordID() string { return p.ID }

func (p Policy) WithID(id string) Policy {
	p.ID = id
	return p
}

func (p Policy) RecordStatus() string { return string(p.Status) }

func (p Policy) WithStatus(status string) Policy {
	p.Status = PolicyStatus(status)
	return p
}

func PolicySchema() *listing.Schema[Policy] {
	return &listing.Schema[Policy]{
		Name:         "policies",
		Kind:         "policy",
		IDPrefix:     "pol",
		Lifecycle:    PolicyLifecycle,
		SearchFields: func(p Policy) []string { return []string{p.Title, p.Summary, p.Owner} },
		Facets: map[string]func(Policy) []string{
			"category": func(p Policy) []string { return []string{p.Category} },
			"owner":    func(p Policy) []string { return []string{p.Owner} },
		},
		Sorts: map[string]listing.Comparator[Policy]{
			"title":     listing.Strings(func(p Policy) string { return p.Title }),
			"effective": listing.Strings(func(p Policy) string { return p.Effective }),
		},
		Required: func(p Policy) []string {
			return listing.RequireText("title", p.Title, "owner", p.Owner)
		},
		Columns: []listing.Column[Policy]{
			{Name: "id", Value: func(p Policy) string { return p.ID }},
			{Name: "title", Value: func(p Policy) string { return p.Title }},
			{Name: "category", Value: func(p Policy) string { return p.Category }},
			{Name: "owner", Value: func(p Policy) string { return p.Owner }},
			{Name: "status", Value: func(p Policy) string { return string(p.Status) }},
			{Name: "effective", Value: func(p Policy) string { return p.Effective }},
		},
	}
}
