// Package delivery holds the production-side records: projects, their tasks,
// content items and reusable templates.
package delivery

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

// ProjectStage is the delivery phase of a project
type ProjectStage string

const (
	ProjectStageDiscovery ProjectStage = "discovery"
	ProjectStageDesign    ProjectStage = "design"
	ProjectStageBuild     ProjectStage = "build"
	ProjectStageReview    ProjectStage = "review"
	ProjectStageLaunched  ProjectStage = "launched"
)

var ProjectLifecycle = listing.Lifecycle{
	Order: []string{
		string(ProjectStageDiscovery), string(ProjectStageDesign), string(ProjectStageBuild),
		string(ProjectStageReview), string(ProjectStageLaunched),
	},
}

type Project struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Client string          `json:"client"`
	Brand  string          `json:"brand,omitempty"`
	Lead   string          `json:"lead,omitempty"`
	Stage  ProjectStage    `json:"stage"`
	Budget decimal.Decimal `json:"budget"`
	Start  string          `json:"start,omitempty"`
	Due    string          `json:"due,omitempty"`
	Team   []string        `json:"team,omitempty"`
}

func (p Project) RecordID() string { return p.ID }

func (p Project) WithID(id string) Project {
	p.ID = id
	return p
}

func (p Project) RecordStatus() string { return string(p.Stage) }

func (p Project) WithStatus(status string) Project {
	p.Stage = ProjectStage(status)
	return p
}

func ProjectSchema() *listing.Schema[Project] {
	return &listing.Schema[Project]{
		Name:         "projects",
		Kind:         "project",
		IDPrefix:     "prj",
		Lifecycle:    ProjectLifecycle,
		SearchFields: func(p Project) []string { return []string{p.Name, p.Client} },
		Brands:       func(p Project) []string { return []string{p.Brand} },
		Facets: map[string]func(Project) []string{
			"client": func(p Project) []string { return []string{p.Client} },
			"lead":   func(p Project) []string { return []string{p.Lead} },
			"member": func(p Project) []string { return p.Team },
		},
		Sorts: map[string]listing.Comparator[Project]{
			"name":   listing.Strings(func(p Project) string { return p.Name }),
			"budget": listing.Decimals(func(p Project) decimal.Decimal { return p.Budget }),
			"due":    listing.Strings(func(p Project) string { return p.Due }),
		},
		Required: func(p Project) []string {
			return listing.RequireText("name", p.Name, "client", p.Client)
		},
		Columns: []listing.Column[Project]{
			{Name: "id", Value: func(p Project) string { return p.ID }},
			{Name: "name", Value: func(p Project) string { return p.Name }},
			{Name: "client", Value: func(p Project) string { return p.Client }},
			{Name: "brand", Value: func(p Project) string { return p.Brand }},
			{Name: "stage", Value: func(p Project) string { return string(p.Stage) }},
			{Name: "budget", Value: func(p Project) string { return p.Budget.StringFixed(2) }},
			{Name: "due", Value: func(p Project) string { return p.Due }},
		},
	}
}
