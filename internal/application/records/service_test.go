package records

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/domain/crm"
	"github.com/agencyos/backend/internal/domain/finance"
	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks
// =============================================================================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error { return nil }

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Load(ctx context.Context, module string) ([]byte, bool, error) {
	args := m.Called(ctx, module)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, module string, payload []byte) error {
	args := m.Called(ctx, module, payload)
	return args.Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

func seedLeads() []crm.Lead {
	return []crm.Lead{
		{ID: "lead-001", Name: "Maya Chen", Company: "Orbit Foods", Brand: "atlas", Source: "referral", Stage: crm.LeadStageNew, Value: decimal.NewFromInt(12000), Created: "2024-03-01"},
		{ID: "lead-002", Name: "Tom Reyes", Company: "Kite Labs", Brand: "lumen", Source: "inbound", Stage: crm.LeadStageProposal, Value: decimal.NewFromInt(4000), Created: "2024-02-10"},
		{ID: "lead-003", Name: "Ines Park", Company: "Beacon Co", Brand: "atlas", Source: "inbound", Stage: crm.LeadStageLost, Value: decimal.NewFromInt(800), Created: "2024-01-22"},
	}
}

func newLeadService(t *testing.T, deps Deps) (*Service[crm.Lead], *listing.Store[crm.Lead]) {
	t.Helper()
	store, err := listing.NewStore(seedLeads())
	require.NoError(t, err)
	return NewService(crm.LeadSchema(), store, deps), store
}

func leadIDs(leads []crm.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

// =============================================================================
// Tests
// =============================================================================

func TestService_List(t *testing.T) {
	svc, _ := newLeadService(t, Deps{})

	res, err := svc.List(context.Background(), ListQuery{
		Filters: map[string][]string{"source": {"inbound"}},
		Sort:    "value",
		Order:   "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lead-002", "lead-003"}, leadIDs(res.Items))
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, map[string]int{"proposal": 1, "lost": 1}, res.Facets)
	assert.Empty(t, res.Groups)
}

func TestService_ListPagination(t *testing.T) {
	svc, _ := newLeadService(t, Deps{})

	res, err := svc.List(context.Background(), ListQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"lead-003"}, leadIDs(res.Items))
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 2, res.TotalPages)

	res, err = svc.List(context.Background(), ListQuery{Page: 5, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestService_ListGroupedByStatus(t *testing.T) {
	svc, _ := newLeadService(t, Deps{})

	res, err := svc.List(context.Background(), ListQuery{Group: "status"})
	require.NoError(t, err)
	require.Len(t, res.Groups, 6)
	assert.Equal(t, "new", res.Groups[0].Status)
	assert.Equal(t, 1, res.Groups[0].Count)
	assert.Equal(t, 20, res.Groups[0].Progress)
	assert.Equal(t, "lost", res.Groups[5].Status)
	assert.Equal(t, 0, res.Groups[5].Progress)
}

func TestService_ListRejectsUnknownSort(t *testing.T) {
	svc, _ := newLeadService(t, Deps{})
	_, err := svc.List(context.Background(), ListQuery{Sort: "colour"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestService_Get(t *testing.T) {
	svc, _ := newLeadService(t, Deps{})

	d, err := svc.Get(context.Background(), "lead-002")
	require.NoError(t, err)
	assert.Equal(t, "Tom Reyes", d.Record.Name)
	assert.Equal(t, 60, d.Progress)
	assert.Equal(t, "negotiation", d.NextStatus)
	require.Len(t, d.Brands, 1)
	assert.Equal(t, "Lumen Media", d.Brands[0].Name)

	_, err = svc.Get(context.Background(), "lead-999")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestService_CreatePublishesAndPersists(t *testing.T) {
	events := new(MockEventPublisher)
	snapshots := new(MockSnapshotRepository)
	svc, store := newLeadService(t, Deps{Events: events, Snapshots: snapshots})

	snapshots.On("Save", mock.Anything, "pipeline", mock.AnythingOfType("[]uint8")).Return(nil).Once()
	events.On("Publish", mock.Anything, mock.MatchedBy(func(evs []shared.DomainEvent) bool {
		if len(evs) != 1 {
			return false
		}
		e, ok := evs[0].(*activity.RecordChanged)
		return ok && e.Type == activity.EventTypeRecordCreated && e.ToStatus == "new" && e.Actor == "ana"
	})).Return(nil).Once()

	ctx := WithActor(context.Background(), "ana")
	d, err := svc.Create(ctx, crm.Lead{Name: "Lea Stone", Company: "Nova"}, "")
	require.NoError(t, err)

	assert.Equal(t, 4, store.Len())
	assert.Equal(t, crm.LeadStageNew, d.Record.Stage)
	assert.NotContains(t, []string{"lead-001", "lead-002", "lead-003"}, d.Record.ID)

	var saved []crm.Lead
	payload := snapshots.Calls[0].Arguments.Get(2).([]byte)
	require.NoError(t, json.Unmarshal(payload, &saved))
	assert.Len(t, saved, 4)

	events.AssertExpectations(t)
	snapshots.AssertExpectations(t)
}

func TestService_CreateValidation(t *testing.T) {
	events := new(MockEventPublisher)
	svc, store := newLeadService(t, Deps{Events: events})

	_, err := svc.Create(context.Background(), crm.Lead{Name: "Only name"}, "")
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, []string{"company"}, de.Fields)
	assert.Equal(t, 3, store.Len())
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestService_CreateIdempotency(t *testing.T) {
	idem := new(MockIdempotencyStore)
	svc, store := newLeadService(t, Deps{Idempotency: idem, IdempotencyTTL: time.Hour})

	idem.On("IsProcessed", mock.Anything, "pipeline:abc").Return(false, nil).Once()
	idem.On("MarkProcessed", mock.Anything, "pipeline:abc", time.Hour).Return(true, nil).Once()
	_, err := svc.Create(context.Background(), crm.Lead{Name: "A", Company: "B"}, "abc")
	require.NoError(t, err)

	idem.On("IsProcessed", mock.Anything, "pipeline:abc").Return(true, nil).Once()
	_, err = svc.Create(context.Background(), crm.Lead{Name: "A", Company: "B"}, "abc")
	assert.True(t, errors.Is(err, shared.ErrDuplicateRequest))

	assert.Equal(t, 4, store.Len())
	idem.AssertExpectations(t)
}

func TestService_TransitionChangesOnlyOneRecord(t *testing.T) {
	events := new(MockEventPublisher)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil)
	svc, store := newLeadService(t, Deps{Events: events})
	before := store.All()

	d, err := svc.Transition(context.Background(), "lead-003", "negotiation")
	require.NoError(t, err)
	assert.Equal(t, crm.LeadStageNegotiation, d.Record.Stage)

	after := store.All()
	for i := range before {
		if before[i].ID == "lead-003" {
			want := before[i]
			want.Stage = crm.LeadStageNegotiation
			assert.Equal(t, want, after[i])
			continue
		}
		assert.Equal(t, before[i], after[i])
	}

	e := events.Calls[0].Arguments.Get(1).([]shared.DomainEvent)[0].(*activity.RecordChanged)
	assert.Equal(t, "lost", e.FromStatus)
	assert.Equal(t, "negotiation", e.ToStatus)
	assert.Equal(t, "lead-003", e.RecordID)
}

func TestService_TransitionUnknownStatus(t *testing.T) {
	svc, _ := newLeadService(t, Deps{})
	_, err := svc.Transition(context.Background(), "lead-001", "archived")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestService_AdvanceAndReset(t *testing.T) {
	svc, store := newLeadService(t, Deps{})

	d, err := svc.Advance(context.Background(), "lead-001")
	require.NoError(t, err)
	assert.Equal(t, crm.LeadStageContacted, d.Record.Stage)

	_, err = svc.Advance(context.Background(), "lead-003")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	n, err := svc.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, seedLeads(), store.All())
}

func TestService_Restore(t *testing.T) {
	snapshots := new(MockSnapshotRepository)
	svc, store := newLeadService(t, Deps{Snapshots: snapshots})

	payload, err := json.Marshal(seedLeads()[:1])
	require.NoError(t, err)
	snapshots.On("Load", mock.Anything, "pipeline").Return(payload, true, nil).Once()

	ok, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())

	snapshots.On("Load", mock.Anything, "pipeline").Return(nil, false, nil).Once()
	ok, err = svc.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestService_RestoreNormalizesAndChecksStatuses(t *testing.T) {
	snapshots := new(MockSnapshotRepository)
	seed := []finance.Invoice{{ID: "inv-1", Number: "A-1", Client: "Kite Labs", Amount: decimal.NewFromInt(10), Status: finance.InvoiceStatusDraft}}
	svc, err := NewSeeded(finance.InvoiceSchema(), seed, Deps{Snapshots: snapshots})
	require.NoError(t, err)

	stale, err := json.Marshal([]finance.Invoice{{ID: "inv-9", Number: "A-9", Client: "Kumo", Status: "archived"}})
	require.NoError(t, err)
	snapshots.On("Load", mock.Anything, "invoices").Return(stale, true, nil).Once()

	ok, err := svc.Restore(context.Background())
	assert.False(t, ok)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	require.Len(t, svc.Records(), 1)
	assert.Equal(t, "inv-1", svc.Records()[0].ID)

	itemized, err := json.Marshal([]finance.Invoice{{
		ID: "inv-2", Number: "A-2", Client: "Kumo", Status: finance.InvoiceStatusSent,
		Items: []finance.LineItem{{Description: "Audit", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(100)}},
	}})
	require.NoError(t, err)
	snapshots.On("Load", mock.Anything, "invoices").Return(itemized, true, nil).Once()

	ok, err = svc.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, svc.Records(), 1)
	assert.True(t, decimal.NewFromInt(300).Equal(svc.Records()[0].Amount))
}

func TestService_RecordsReturnsCopy(t *testing.T) {
	svc, store := newLeadService(t, Deps{})

	got := svc.Records()
	got[0].Name = "changed"
	assert.Equal(t, "Maya Chen", store.All()[0].Name)
	assert.Equal(t, "Maya Chen", svc.Records()[0].Name)
}

func TestService_SummarizeAndTable(t *testing.T) {
	svc, _ := newLeadService(t, Deps{})

	sum := svc.Summarize()
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, map[string]int{"atlas": 2, "lumen": 1}, sum.ByBrand)
	assert.Equal(t, 1, sum.ByStatus["lost"])

	table, err := svc.Table(context.Background(), ListQuery{Filters: map[string][]string{"brand": {"atlas"}}})
	require.NoError(t, err)
	assert.Equal(t, "id", table.Header[0])
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "12000.00", table.Rows[0][5])
}

func TestNewSeeded_NormalizesSeed(t *testing.T) {
	seed := []finance.Invoice{{
		ID: "inv-1", Number: "A-1", Client: "Kite Labs", Status: finance.InvoiceStatusDraft,
		Items: []finance.LineItem{{Description: "Design", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(150)}},
	}}
	svc, err := NewSeeded(finance.InvoiceSchema(), seed, Deps{})
	require.NoError(t, err)
	require.Len(t, svc.Records(), 1)
	assert.True(t, decimal.NewFromInt(300).Equal(svc.Records()[0].Amount))

	_, err = NewSeeded(finance.InvoiceSchema(), append(seed, seed[0]), Deps{})
	assert.Error(t, err)
}
