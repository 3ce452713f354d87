package listing

import (
	"errors"
	"testing"

	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deal struct {
	ID     string
	Name   string
	Stage  string
	Brand  string
	Tags   []string
	Value  decimal.Decimal
	Closed string
}

func (d deal) RecordID() string { return d.ID }

func (d deal) WithID(id string) deal {
	d.ID = id
	return d
}

func (d deal) RecordStatus() string { return d.Stage }

func (d deal) WithStatus(status string) deal {
	d.Stage = status
	return d
}

func dealSchema() *Schema[deal] {
	return &Schema[deal]{
		Name:     "deals",
		Kind:     "deal",
		IDPrefix: "deal",
		Lifecycle: Lifecycle{
			Order: []string{"new", "proposal", "won"},
			Other: []string{"lost"},
		},
		SearchFields: func(d deal) []string { return []string{d.Name} },
		Brands:       func(d deal) []string { return []string{d.Brand} },
		Facets: map[string]func(deal) []string{
			"tag": func(d deal) []string { return d.Tags },
		},
		Sorts: map[string]Comparator[deal]{
			"name":   Strings(func(d deal) string { return d.Name }),
			"value":  Decimals(func(d deal) decimal.Decimal { return d.Value }),
			"closed": Strings(func(d deal) string { return d.Closed }),
		},
		Required: func(d deal) []string { return RequireText("name", d.Name, "brand", d.Brand) },
		Columns: []Column[deal]{
			{Name: "id", Value: func(d deal) string { return d.ID }},
			{Name: "name", Value: func(d deal) string { return d.Name }},
		},
	}
}

func seedDeals() []deal {
	return []deal{
		{ID: "d1", Name: "Orbit rebrand", Stage: "new", Brand: "atlas", Tags: []string{"seo"}, Value: decimal.NewFromInt(1200), Closed: "2024-03-02"},
		{ID: "d2", Name: "Émile retainer", Stage: "proposal", Brand: "lumen", Tags: []string{"retainer", "seo"}, Value: decimal.NewFromInt(300), Closed: "2024-01-15"},
		{ID: "d3", Name: "apex launch", Stage: "won", Brand: "atlas", Value: decimal.NewFromInt(9000), Closed: "2024-02-20"},
		{ID: "d4", Name: "Beacon audit", Stage: "lost", Brand: "halcyon", Tags: []string{"audit"}, Value: decimal.NewFromInt(450), Closed: "2023-12-01"},
	}
}

func newDealController(t *testing.T) (*Controller[deal], *Store[deal]) {
	t.Helper()
	store, err := NewStore(seedDeals())
	require.NoError(t, err)
	return NewController(dealSchema(), store), store
}

func ids(records []deal) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestNewStore_RejectsDuplicateIDs(t *testing.T) {
	_, err := NewStore([]deal{{ID: "x"}, {ID: "x"}})
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))

	_, err = NewStore([]deal{{Name: "no id"}})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestDerive_IsSubsetMatchingEveryPredicate(t *testing.T) {
	ctrl, store := newDealController(t)

	cases := []map[string][]string{
		{"status": {"new"}},
		{"brand": {"atlas"}},
		{"brand": {"atlas"}, "status": {"won"}},
		{"tag": {"seo"}, "search": {"retainer"}},
		{"search": {"zzz"}},
		{"tag": {"SEO"}, "brand": {"lumen", "atlas"}},
	}
	for _, filters := range cases {
		ctrl.ClearFilters()
		for field, values := range filters {
			ctrl.SetFilter(field, values...)
		}
		view := ctrl.View()
		all := store.All()
		for _, r := range view {
			assert.Contains(t, all, r)
			for field, values := range filters {
				assert.True(t, dealSchema().Predicate(field, values...)(r), "record %s fails %s", r.ID, field)
			}
		}
	}
}

func TestDerive_ConjunctionAndReplacement(t *testing.T) {
	ctrl, _ := newDealController(t)

	ctrl.SetFilter("brand", "atlas")
	assert.Equal(t, []string{"d1", "d3"}, ids(ctrl.View()))

	ctrl.SetFilter("status", "won")
	assert.Equal(t, []string{"d3"}, ids(ctrl.View()))

	// setting the same field again replaces, not narrows
	ctrl.SetFilter("status", "new")
	assert.Equal(t, []string{"d1"}, ids(ctrl.View()))
	assert.Equal(t, []string{"brand", "status"}, ctrl.Filters())

	ctrl.SetFilter("status")
	assert.Equal(t, []string{"brand"}, ctrl.Filters())
}

func TestDerive_UnknownFieldIsIgnored(t *testing.T) {
	ctrl, store := newDealController(t)
	ctrl.SetFilter("colour", "red")
	assert.Empty(t, ctrl.Filters())
	assert.Len(t, ctrl.View(), store.Len())
}

func TestClearFilters_RestoresOriginalOrder(t *testing.T) {
	ctrl, store := newDealController(t)
	ctrl.SetFilter("brand", "atlas")
	ctrl.SetFilter("search", "orbit")
	require.NotEqual(t, store.Len(), len(ctrl.View()))

	ctrl.ClearFilters()
	if diff := cmp.Diff(ids(store.All()), ids(ctrl.View())); diff != "" {
		t.Fatalf("view differs from collection (-want +got):\n%s", diff)
	}
}

func TestSortBy(t *testing.T) {
	ctrl, _ := newDealController(t)

	require.NoError(t, ctrl.SortBy("value", false))
	assert.Equal(t, []string{"d2", "d4", "d1", "d3"}, ids(ctrl.View()))

	require.NoError(t, ctrl.SortBy("value", true))
	assert.Equal(t, []string{"d3", "d1", "d4", "d2"}, ids(ctrl.View()))

	require.NoError(t, ctrl.SortBy("closed", false))
	assert.Equal(t, []string{"d4", "d2", "d3", "d1"}, ids(ctrl.View()))

	// collation ignores case and accents sort next to their base letter
	require.NoError(t, ctrl.SortBy("name", false))
	assert.Equal(t, []string{"d3", "d4", "d2", "d1"}, ids(ctrl.View()))

	require.NoError(t, ctrl.SortBy("status", false))
	assert.Equal(t, []string{"d1", "d2", "d3", "d4"}, ids(ctrl.View()))

	err := ctrl.SortBy("colour", false)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	require.NoError(t, ctrl.SortBy("", false))
	assert.Equal(t, []string{"d1", "d2", "d3", "d4"}, ids(ctrl.View()))
}

func TestDerive_StableSortKeepsInsertionOrderForTies(t *testing.T) {
	records := []deal{
		{ID: "a", Value: decimal.NewFromInt(1)},
		{ID: "b", Value: decimal.NewFromInt(1)},
		{ID: "c", Value: decimal.NewFromInt(0)},
	}
	order := &Sort[deal]{Compare: Decimals(func(d deal) decimal.Decimal { return d.Value })}
	got := Derive(records, nil, order)
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
	assert.Equal(t, []string{"a", "b", "c"}, ids(records))
}

func TestCreate_AppendsWithFreshID(t *testing.T) {
	ctrl, store := newDealController(t)
	before := store.Len()

	created, err := ctrl.Create(deal{ID: "d1", Name: "Nova site", Brand: "atlas"})
	require.NoError(t, err)

	assert.Equal(t, before+1, store.Len())
	assert.NotEqual(t, "d1", created.ID)
	assert.Contains(t, created.ID, "deal-")
	assert.Equal(t, "new", created.Stage)
	for _, r := range seedDeals() {
		assert.NotEqual(t, r.ID, created.ID)
	}
	last := store.All()[store.Len()-1]
	assert.Equal(t, created, last)
}

func TestCreate_MissingRequiredFieldsAborts(t *testing.T) {
	ctrl, store := newDealController(t)
	before := store.All()

	_, err := ctrl.Create(deal{Name: "  "})
	require.Error(t, err)

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, shared.ErrRequiredField.Code, de.Code)
	assert.Equal(t, []string{"name", "brand"}, de.Fields)
	assert.Equal(t, before, store.All())
}

func TestCreate_RejectsUnknownStatus(t *testing.T) {
	ctrl, store := newDealController(t)
	_, err := ctrl.Create(deal{Name: "x", Brand: "atlas", Stage: "archived"})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.Equal(t, 4, store.Len())
}

func TestTransition_ChangesExactlyOneStatus(t *testing.T) {
	ctrl, store := newDealController(t)
	old := store.All()

	// any status may follow any other, including backwards moves
	prev, next, err := ctrl.Transition("d3", "new")
	require.NoError(t, err)
	assert.Equal(t, "won", prev.Stage)
	assert.Equal(t, "new", next.Stage)

	current := store.All()
	require.Len(t, current, len(old))
	for i := range old {
		if old[i].ID == "d3" {
			want := old[i]
			want.Stage = "new"
			assert.Equal(t, want, current[i])
			continue
		}
		assert.Equal(t, old[i], current[i])
	}
	// the slice handed out before the transition is untouched
	assert.Equal(t, "won", old[2].Stage)
}

func TestTransition_Errors(t *testing.T) {
	ctrl, _ := newDealController(t)

	_, _, err := ctrl.Transition("d1", "archived")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	_, _, err = ctrl.Transition("missing", "won")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestAdvance(t *testing.T) {
	ctrl, _ := newDealController(t)

	_, after, err := ctrl.Advance("d1")
	require.NoError(t, err)
	assert.Equal(t, "proposal", after.Stage)

	_, after, err = ctrl.Advance("d3")
	require.NoError(t, err)
	assert.Equal(t, "won", after.Stage)

	_, _, err = ctrl.Advance("d4")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestUpdate_ReplacesRecordKeepingID(t *testing.T) {
	ctrl, store := newDealController(t)

	_, after, err := ctrl.Update("d2", deal{ID: "other", Name: "Émile retainer v2", Brand: "lumen"})
	require.NoError(t, err)
	assert.Equal(t, "d2", after.ID)
	assert.Equal(t, "proposal", after.Stage, "empty status keeps the current one")

	got, ok := store.Get("d2")
	require.True(t, ok)
	assert.Equal(t, "Émile retainer v2", got.Name)

	_, _, err = ctrl.Update("d2", deal{Name: ""})
	assert.True(t, errors.Is(err, shared.ErrRequiredField))
}

func TestSelect(t *testing.T) {
	ctrl, _ := newDealController(t)

	_, ok := ctrl.Selected()
	assert.False(t, ok)

	r, err := ctrl.Select("d2")
	require.NoError(t, err)
	assert.Equal(t, "d2", r.ID)

	_, _, err = ctrl.Transition("d2", "won")
	require.NoError(t, err)
	sel, ok := ctrl.Selected()
	require.True(t, ok)
	assert.Equal(t, "won", sel.Stage, "selection follows the latest copy")

	ctrl.Deselect()
	_, ok = ctrl.Selected()
	assert.False(t, ok)

	_, err = ctrl.Select("nope")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestReset_RestoresSeed(t *testing.T) {
	ctrl, store := newDealController(t)
	_, err := ctrl.Create(deal{Name: "x", Brand: "atlas"})
	require.NoError(t, err)
	_, _, err = ctrl.Transition("d1", "lost")
	require.NoError(t, err)

	ctrl.Reset()
	assert.Equal(t, seedDeals(), store.All())
}

func TestGroups_FollowStageOrder(t *testing.T) {
	ctrl, _ := newDealController(t)
	ctrl.SetFilter("brand", "atlas", "lumen")

	groups := ctrl.Groups()
	require.Len(t, groups, 4)
	assert.Equal(t, "new", groups[0].Key)
	assert.Equal(t, []string{"d1"}, ids(groups[0].Records))
	assert.Equal(t, []string{"d2"}, ids(groups[1].Records))
	assert.Equal(t, []string{"d3"}, ids(groups[2].Records))
	assert.Empty(t, groups[3].Records)
}

func TestLifecycle(t *testing.T) {
	l := Lifecycle{Order: []string{"a", "b", "c", "d"}, Other: []string{"x"}}

	assert.Equal(t, []string{"a", "b", "c", "d", "x"}, l.Statuses())
	assert.True(t, l.Valid("x"))
	assert.False(t, l.Valid("z"))
	assert.Equal(t, 25, l.Progress("a"))
	assert.Equal(t, 100, l.Progress("d"))
	assert.Equal(t, 0, l.Progress("x"))

	next, ok := l.Next("b")
	assert.True(t, ok)
	assert.Equal(t, "c", next)
	_, ok = l.Next("x")
	assert.False(t, ok)
}

func TestCountByAndRows(t *testing.T) {
	counts := CountBy(seedDeals(), func(d deal) []string { return d.Tags })
	assert.Equal(t, map[string]int{"seo": 2, "retainer": 1, "audit": 1}, counts)

	s := dealSchema()
	assert.Equal(t, []string{"id", "name"}, s.Header())
	assert.Equal(t, []string{"d1", "Orbit rebrand"}, s.Row(seedDeals()[0]))
	assert.Equal(t, []string{"status", "brand", "tag"}, s.FacetNames())
	assert.Equal(t, []string{"closed", "name", "status", "value"}, s.SortNames())
}
