package ops

import (
	"fmt"

	"github.com/agencyos/backend/internal/domain/shared/listing"
)

type CredentialStatus string

const (
	CredentialStatusActive   CredentialStatus = "active"
	CredentialStatusRotating CredentialStatus = "rotating"
	CredentialStatusRevoked  CredentialStatus = "revoked"
)

var CredentialLifecycle = listing.Lifecycle{
	Other: []string{string(CredentialStatusActive), string(CredentialStatusRotating), string(CredentialStatusRevoked)},
}

// Sealer encrypts secrets at rest.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// Credential is a shared login. Secret is write-only: it is sealed into
// SealedSecret on the way in and never kept in clear.
type Credential struct {
	ID           string           `json:"id"`
	Service      string           `json:"service"`
	Username     string           `json:"username"`
	URL          string           `json:"url,omitempty"`
	Category     string           `json:"category,omitempty"`
	Brand        string           `json:"brand,omitempty"`
	Status       CredentialStatus `json:"status"`
	Rotated      string           `json:"rotated,omitempty"`
	Secret       string           `json:"secret,omitempty"`
	SealedSecret string           `json:"sealed_secret,omitempty"`
}

func (c Credential) RecordID() string { return c.ID }

func (c Credential) WithID(id string) Credential {
	c.ID = id
	return c
}

func (c Credential) RecordStatus() string { return string(c.Status) }

func (c Credential) WithStatus(status string) Credential {
	c.Status = CredentialStatus(status)
	return c
}

// HasSecret reports whether a sealed secret is stored.
func (c Credential) HasSecret() bool { return c.SealedSecret != "" }

// SealCredential moves a clear secret into its sealed form.
func SealCredential(sealer Sealer, c Credential) (Credential, error) {
	if c.Secret == "" {
		return c, nil
	}
	if sealer == nil {
		return c, fmt.Errorf("no sealer configured for credential %s", c.Service)
	}
	sealed, err := sealer.Seal(c.Secret)
	if err != nil {
		return c, fmt.Errorf("seal credential %s: %w", c.Service, err)
	}
	c.SealedSecret = sealed
	c.Secret = ""
	return c, nil
}

// CredentialSchema needs the sealer that protects secrets on create and update.
func CredentialSchema(sealer Sealer) *listing.Schema[Credential] {
	return &listing.Schema[Credential]{
		Name:         "credentials",
		Kind:         "credential",
		IDPrefix:     "cred",
		Lifecycle:    CredentialLifecycle,
		SearchFields: func(c Credential) []string { return []string{c.Service, c.Username, c.URL} },
		Brands:       func(c Credential) []string { return []string{c.Brand} },
		Facets: map[string]func(Credential) []string{
			"category": func(c Credential) []string { return []string{c.Category} },
		},
		Sorts: map[string]listing.Comparator[Credential]{
			"service": listing.Strings(func(c Credential) string { return c.Service }),
			"rotated": listing.Strings(func(c Credential) string { return c.Rotated }),
		},
		Required: func(c Credential) []string {
			return listing.RequireText("service", c.Service, "username", c.Username)
		},
		Normalize: func(c Credential) (Credential, error) {
			return SealCredential(sealer, c)
		},
		Carry: func(current, next Credential) Credential {
			if next.Secret == "" && next.SealedSecret == "" {
				next.SealedSecret = current.SealedSecret
			}
			return next
		},
		Columns: []listing.Column[Credential]{
			{Name: "id", Value: func(c Credential) string { return c.ID }},
			{Name: "service", Value: func(c Credential) string { return c.Service }},
			{Name: "username", Value: func(c Credential) string { return c.Username }},
			{Name: "category", Value: func(c Credential) string { return c.Category }},
			{Name: "status", Value: func(c Credential) string { return string(c.Status) }},
			{Name: "rotated", Value: func(c Credential) string { return c.Rotated }},
		},
	}
}
