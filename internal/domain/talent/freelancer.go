// Package talent holds the freelancer roster.
package talent

import (
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
)

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBooked    Availability = "booked"
	AvailabilityInactive  Availability = "inactive"
)

// FreelancerLifecycle has no progression; availability just flips.
var FreelancerLifecycle = listing.Lifecycle{
	Other: []string{string(AvailabilityAvailable), string(AvailabilityBooked), string(AvailabilityInactive)},
}

type Freelancer struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Role     string          `json:"role"`
	Skills   []string        `json:"skills,omitempty"`
	Rate     decimal.Decimal `json:"rate"`
	Rating   float64         `json:"rating"`
	Status   Availability    `json:"status"`
	Location string          `json:"location,omitempty"`
	Email    string          `json:"email,omitempty"`
}

func (f Freelancer) RecordID() string { return f.ID }

func (f Freelancer) WithID(id string) Freelancer {
	f.ID = id
	return f
}

func (f Freelancer) RecordStatus() string { return string(f.Status) }

func (f Freelancer) WithStatus(status string) Freelancer {
	f.Status = Availability(status)
	return f
}

func FreelancerSchema() *listing.Schema[Freelancer] {
	return &listing.Schema[Freelancer]{
		Name:      "talent",
		Kind:      "freelancer",
		IDPrefix:  "fl",
		Lifecycle: FreelancerLifecycle,
		SearchFields: func(f Freelancer) []string {
			return append([]string{f.Name, f.Role, f.Location}, f.Skills...)
		},
		Facets: map[string]func(Freelancer) []string{
			"role":  func(f Freelancer) []string { return []string{f.Role} },
			"skill": func(f Freelancer) []string { return f.Skills },
		},
		Sorts: map[string]listing.Comparator[Freelancer]{
			"name":   listing.Strings(func(f Freelancer) string { return f.Name }),
			"rate":   listing.Decimals(func(f Freelancer) decimal.Decimal { return f.Rate }),
			"rating": listing.Numbers(func(f Freelancer) float64 { return f.Rating }),
		},
		Required: func(f Freelancer) []string {
			return listing.RequireText("name", f.Name, "role", f.Role)
		},
		Columns: []listing.Column[Freelancer]{
			{Name: "id", Value: func(f Freelancer) string { return f.ID }},
			{Name: "name", Value: func(f Freelancer) string { return f.Name }},
			{Name: "role", Value: func(f Freelancer) string { return f.Role }},
			{Name: "rate", Value: func(f Freelancer) string { return f.Rate.StringFixed(2) }},
			{Name: "rating", Value: func(f Freelancer) string { return decimal.NewFromFloat(f.Rating).StringFixed(1) }},
			{Name: "status", Value: func(f Freelancer) string { return string(f.Status) }},
		},
	}
}
