package delivery

import "github.com/agencyos/backend/internal/domain/shared/listing"

type TemplateStatus string

const (
	TemplateStatusDraft    TemplateStatus = "draft"
	TemplateStatusActive   TemplateStatus = "active"
	TemplateStatusArchived TemplateStatus = "archived"
)

var TemplateLifecycle = listing.Lifecycle{
	Order: []string{string(TemplateStatusDraft), string(TemplateStatusActive), string(TemplateStatusArchived)},
}

// Template is a reusable proposal, brief or email body
type Template struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Kind    string         `json:"kind"`
	Status  TemplateStatus `json:"status"`
	Tags    []string       `json:"tags,omitempty"`
	Updated string         `json:"updated,omitempty"`
	Body    string         `json:"body,omitempty"`
}

func (t Template) RecordID() string { return t.ID }

func (t Template) WithID(id string) Template {
	t.ID = id
	return t
}

func (t Template) RecordStatus() string { return string(t.Status) }

func (t Template) WithStatus(status string) Template {
	t.Status = TemplateStatus(status)
	return t
}

func TemplateSchema() *listing.Schema[Template] {
	return &listing.Schema[Template]{
		Name:         "templates",
		Kind:         "template",
		IDPrefix:     "tpl",
		Lifecycle:    TemplateLifecycle,
		SearchFields: func(t Template) []string { return []string{t.Name, t.Body} },
		Facets: map[string]func(Template) []string{
			"kind": func(t Template) []string { return []string{t.Kind} },
			"tag":  func(t Template) []string { return t.Tags },
		},
		Sorts: map[string]listing.Comparator[Template]{
			"name":    listing.Strings(func(t Template) string { return t.Name }),
			"updated": listing.Strings(func(t Template) string { return t.Updated }),
		},
		Required: func(t Template) []string {
			return listing.RequireText("name", t.Name, "kind", t.Kind)
		},
		Columns: []listing.Column[Template]{
			{Name: "id", Value: func(t Template) string { return t.ID }},
			{Name: "name", Value: func(t Template) string { return t.Name }},
			{Name: "kind", Value: func(t Template) string { return t.Kind }},
			{Name: "status", Value: func(t Template) string { return string(t.Status) }},
			{Name: "updated", Value: func(t Template) string { return t.Updated }},
		},
	}
}
