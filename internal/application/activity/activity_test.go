package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/agencyos/backend/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPatch(t *testing.T) {
	before := json.RawMessage(`{"id":"lead-1","status":"new","value":"1200"}`)
	after := json.RawMessage(`{"id":"lead-1","status":"contacted","value":"1200"}`)

	assert.Equal(t, "-  \"status\": \"new\",\n+  \"status\": \"contacted\",\n", Patch(before, after))
	assert.Equal(t, "", Patch(before, before))
	assert.Equal(t, "", Patch(nil, nil))

	created := Patch(nil, json.RawMessage(`{"id":"x"}`))
	assert.Equal(t, "+{\n+  \"id\": \"x\"\n+}\n", created)
}

func TestRecorder_Handle(t *testing.T) {
	repo := memory.NewActivityRepository(10)
	rec := NewRecorder(repo, zap.NewNop())
	ctx := context.Background()

	ev := activity.NewRecordChanged(activity.EventTypeRecordTransitioned, "invoices", "inv-7")
	ev.FromStatus, ev.ToStatus = "sent", "paid"
	ev.Before = json.RawMessage(`{"status":"sent"}`)
	ev.After = json.RawMessage(`{"status":"paid"}`)
	ev.Actor = "finance@northwind"

	require.NoError(t, rec.Handle(ctx, ev))

	// unrelated event shapes are ignored
	other := shared.NewEventHeader("something.else", "x", "y")
	require.NoError(t, rec.Handle(ctx, &other))

	entries, err := repo.Find(ctx, activity.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, ev.EventID().String(), e.ID)
	assert.Equal(t, "invoices", e.Module)
	assert.Equal(t, "inv-7", e.RecordID)
	assert.Equal(t, activity.KindTransitioned, e.Kind)
	assert.Equal(t, "sent", e.FromStatus)
	assert.Equal(t, "paid", e.ToStatus)
	assert.Equal(t, "finance@northwind", e.Actor)
	assert.Contains(t, e.Patch, `+  "status": "paid"`)
	assert.Len(t, rec.EventTypes(), 4)
}

func TestService_FindClampsLimit(t *testing.T) {
	repo := memory.NewActivityRepository(1000)
	ctx := context.Background()
	for i := 0; i < 600; i++ {
		require.NoError(t, repo.Append(ctx, activity.Entry{ID: fmt.Sprint(i), Module: "tasks"}))
	}
	svc := NewService(repo)

	def, err := svc.Find(ctx, activity.Query{})
	require.NoError(t, err)
	assert.Len(t, def, defaultLimit)
	assert.Equal(t, "599", def[0].ID)

	capped, err := svc.Find(ctx, activity.Query{Limit: 10_000})
	require.NoError(t, err)
	assert.Len(t, capped, maxLimit)

	none, err := svc.Find(ctx, activity.Query{Module: "payouts"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
