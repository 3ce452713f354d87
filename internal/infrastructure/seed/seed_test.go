package seed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/agencyos/backend/internal/domain/crm"
	"github.com/agencyos/backend/internal/domain/finance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var allModules = []string{
	"campaigns", "clients", "content", "contracts", "credentials", "domains", "invoices",
	"payouts", "pipeline", "policies", "projects", "talent", "tasks", "tax", "templates",
}

func TestEmbeddedSeedsCoverEveryModule(t *testing.T) {
	mods, err := NewSource("").Modules()
	require.NoError(t, err)
	assert.Equal(t, allModules, mods)

	for _, m := range mods {
		payload, err := NewSource("").JSON(m)
		require.NoError(t, err, m)
		var rows []map[string]any
		require.NoError(t, json.Unmarshal(payload, &rows), m)
		assert.NotEmpty(t, rows, m)
		for _, r := range rows {
			assert.NotEmpty(t, r["id"], m)
		}
	}
}

func TestLoad_TypedRecords(t *testing.T) {
	leads, err := Load[crm.Lead](NewSource(""), "pipeline")
	require.NoError(t, err)
	require.NotEmpty(t, leads)
	assert.Equal(t, "lead-001", leads[0].ID)
	assert.Equal(t, crm.LeadStageNew, leads[0].Stage)
	assert.Equal(t, "2026-01-06", leads[0].Created)
	assert.Equal(t, "4800", leads[0].Value.String())

	invoices, err := Load[finance.Invoice](NewSource(""), "invoices")
	require.NoError(t, err)
	require.Len(t, invoices[0].Items, 2)
	assert.Equal(t, "9000", invoices[0].Items[0].UnitPrice.String())
}

func TestSource_OverrideWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.yml"), []byte(`
- id: lead-900
  name: Override
  company: Local
  stage: won
  value: "1"
`), 0o644))

	src := NewSource(dir)
	leads, err := Load[crm.Lead](src, "pipeline")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "lead-900", leads[0].ID)

	_, name, err := src.Read("clients")
	require.NoError(t, err)
	assert.Equal(t, "embedded:clients.yaml", name)
}

func TestSource_Errors(t *testing.T) {
	_, err := NewSource("").JSON("nope")
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.yaml"), []byte("id: [unclosed"), 0o644))
	_, err = NewSource(dir).JSON("tasks")
	assert.Error(t, err)
}

func TestToJSON_EmptyFile(t *testing.T) {
	out, err := ToJSON(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestModuleOf(t *testing.T) {
	assert.Equal(t, "tax", ModuleOf("seeds/tax.yaml"))
	assert.Equal(t, "talent", ModuleOf("talent.yml"))
}

type reloads struct {
	mu    sync.Mutex
	calls map[string][]byte
}

func (r *reloads) reload(_ context.Context, module string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[module] = payload
	return nil
}

func (r *reloads) get(module string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.calls[module]
	return p, ok
}

func TestWatcher_ReloadsChangedSeed(t *testing.T) {
	dir := t.TempDir()
	rec := &reloads{calls: map[string][]byte{}}
	w, err := NewWatcher(NewSource(dir), rec.reload, 20*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-w.Done()
		_ = w.Close()
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.yaml"), []byte(`
- id: task-900
  title: Watch me
  status: todo
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	require.Eventually(t, func() bool {
		_, ok := rec.get("tasks")
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	payload, _ := rec.get("tasks")
	assert.Contains(t, string(payload), "task-900")
	_, ok := rec.get("notes")
	assert.False(t, ok)
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(NewSource(filepath.Join(t.TempDir(), "missing")), nil, 0, nil)
	assert.Error(t, err)
}
