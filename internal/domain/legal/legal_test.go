package legal

import (
	"errors"
	"testing"

	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContracts(t *testing.T) *listing.Controller[Contract] {
	t.Helper()
	store, err := listing.NewStore([]Contract{
		{ID: "ctr-1", Title: "Retainer 2026", Party: "Harbor Dental Group", Kind: "msa", Value: decimal.NewFromInt(36000), Status: ContractStatusDraft},
		{ID: "ctr-2", Title: "Photo shoot", Party: "Ines Duarte", Kind: "contractor", Value: decimal.NewFromInt(1200), Status: ContractStatusSigned},
		{ID: "ctr-3", Title: "Pilot", Party: "Kumo", Kind: "sow", Value: decimal.NewFromInt(4000), Status: ContractStatusExpired},
	})
	require.NoError(t, err)
	return listing.NewController(ContractSchema(), store)
}

func TestContract_Advance(t *testing.T) {
	ctrl := newContracts(t)

	_, after, err := ctrl.Advance("ctr-1")
	require.NoError(t, err)
	assert.Equal(t, ContractStatusSent, after.Status)

	_, after, err = ctrl.Advance("ctr-2")
	require.NoError(t, err)
	assert.Equal(t, ContractStatusSigned, after.Status, "signed is the last stage")

	_, _, err = ctrl.Advance("ctr-3")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestContract_FacetsAndSort(t *testing.T) {
	ctrl := newContracts(t)

	ctrl.SetFilter("kind", "MSA", "sow")
	require.NoError(t, ctrl.SortBy("value", true))
	view := ctrl.View()
	require.Len(t, view, 2)
	assert.Equal(t, "ctr-1", view[0].ID)
	assert.Equal(t, "ctr-3", view[1].ID)

	ctrl.SetFilter(listing.FieldSearch, "duarte")
	assert.Empty(t, ctrl.View(), "filters are conjunctive")
}

func TestContract_RequiredFields(t *testing.T) {
	ctrl := newContracts(t)

	_, err := ctrl.Create(Contract{Title: "  "})
	require.Error(t, err)
	assert.Len(t, ctrl.View(), 3)

	created, err := ctrl.Create(Contract{Title: "NDA", Party: "Lumen"})
	require.NoError(t, err)
	assert.Equal(t, ContractStatusDraft, created.Status)
	assert.Regexp(t, `^ctr-[0-9a-f]{12}$`, created.ID)
}

func TestPolicyLifecycle(t *testing.T) {
	assert.Equal(t, 50, PolicyLifecycle.Progress(string(PolicyStatusUnderReview)))
	assert.Equal(t, 100, PolicyLifecycle.Progress(string(PolicyStatusRetired)))

	next, ok := PolicyLifecycle.Next(string(PolicyStatusActive))
	require.True(t, ok)
	assert.Equal(t, string(PolicyStatusRetired), next)
}

func TestPolicy_SortByEffective(t *testing.T) {
	store, err := listing.NewStore([]Policy{
		{ID: "pol-1", Title: "Expenses", Owner: "finance", Status: PolicyStatusActive, Effective: "2025-06-01"},
		{ID: "pol-2", Title: "Password hygiene", Owner: "ops", Category: "security", Status: PolicyStatusDraft},
		{ID: "pol-3", Title: "Brand usage", Owner: "studio", Status: PolicyStatusActive, Effective: "2024-01-15"},
	})
	require.NoError(t, err)
	ctrl := listing.NewController(PolicySchema(), store)

	require.NoError(t, ctrl.SortBy("effective", false))
	var ids []string
	for _, p := range ctrl.View() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"pol-2", "pol-3", "pol-1"}, ids)

	_, _, err = ctrl.Transition("pol-2", "published")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}
