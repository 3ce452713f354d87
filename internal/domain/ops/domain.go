// Package ops holds the agency's operational assets: registered domains and
// shared service credentials.
package ops

import (
	"strings"

	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/bmatcuk/doublestar/v4"
)

type DomainStatus string

const (
	DomainStatusActive   DomainStatus = "active"
	DomainStatusExpiring DomainStatus = "expiring"
	DomainStatusExpired  DomainStatus = "expired"
)

var DomainLifecycle = listing.Lifecycle{
	Order: []string{string(DomainStatusActive), string(DomainStatusExpiring), string(DomainStatusExpired)},
}

// Domain is a registered internet domain name
type Domain struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Registrar string       `json:"registrar"`
	Brand     string       `json:"brand,omitempty"`
	Status    DomainStatus `json:"status"`
	Expires   string       `json:"expires,omitempty"`
	AutoRenew bool         `json:"auto_renew"`
	DNS       string       `json:"dns,omitempty"`
}

func (d Domain) RecordID() string { return d.ID }

func (d Domain) WithID(id string) Domain {
	d.ID = id
	return d
}

func (d Domain) RecordStatus() string { return string(d.Status) }

func (d Domain) WithStatus(status string) Domain {
	d.Status = DomainStatus(status)
	return d
}

// MatchDomain matches host names against glob patterns such as "*.studio" or
// "shop.*.com". Labels are separated by dots, so "*" never crosses one.
func MatchDomain(patterns []string) listing.Predicate[Domain] {
	var valid []string
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && doublestar.ValidatePattern(dotsToSlashes(p)) {
			valid = append(valid, dotsToSlashes(p))
		}
	}
	if len(valid) == 0 {
		return nil
	}
	return func(d Domain) bool {
		name := dotsToSlashes(strings.ToLower(d.Name))
		for _, p := range valid {
			if ok, _ := doublestar.Match(p, name); ok {
				return true
			}
		}
		return false
	}
}

func dotsToSlashes(s string) string {
	return strings.ReplaceAll(s, ".", "/")
}

func DomainSchema() *listing.Schema[Domain] {
	return &listing.Schema[Domain]{
		Name:         "domains",
		Kind:         "domain",
		IDPrefix:     "dom",
		Lifecycle:    DomainLifecycle,
		SearchFields: func(d Domain) []string { return []string{d.Name, d.Registrar} },
		Brands:       func(d Domain) []string { return []string{d.Brand} },
		Facets: map[string]func(Domain) []string{
			"registrar": func(d Domain) []string { return []string{d.Registrar} },
		},
		Matchers: map[string]func([]string) listing.Predicate[Domain]{
			"pattern": MatchDomain,
		},
		Sorts: map[string]listing.Comparator[Domain]{
			"name":    listing.Strings(func(d Domain) string { return d.Name }),
			"expires": listing.Strings(func(d Domain) string { return d.Expires }),
		},
		Required: func(d Domain) []string {
			return listing.RequireText("name", d.Name, "registrar", d.Registrar)
		},
		Normalize: func(d Domain) (Domain, error) {
			d.Name = strings.ToLower(strings.TrimSpace(d.Name))
			return d, nil
		},
		Columns: []listing.Column[Domain]{
			{Name: "id", Value: func(d Domain) string { return d.ID }},
			{Name: "name", Value: func(d Domain) string { return d.Name }},
			{Name: "registrar", Value: func(d Domain) string { return d.Registrar }},
			{Name: "status", Value: func(d Domain) string { return string(d.Status) }},
			{Name: "expires", Value: func(d Domain) string { return d.Expires }},
		},
	}
}
