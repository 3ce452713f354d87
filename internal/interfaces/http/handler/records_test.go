package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/domain/crm"
	"github.com/agencyos/backend/internal/infrastructure/cache"
	"github.com/agencyos/backend/internal/interfaces/http/dto"
	"github.com/agencyos/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLeads() []crm.Lead {
	return []crm.Lead{
		{ID: "lead-001", Name: "Ana Ruiz", Company: "Harbor Dental", Stage: crm.LeadStageNew, Value: decimal.NewFromInt(4800), Brand: "lumen", Source: "referral"},
		{ID: "lead-002", Name: "Ben Ode", Company: "Kumo", Stage: crm.LeadStageProposal, Value: decimal.NewFromInt(900), Source: "ads"},
		{ID: "lead-003", Name: "Cy Park", Company: "Fieldhouse", Stage: crm.LeadStageNew, Value: decimal.NewFromInt(50), Source: "ads"},
		{ID: "lead-004", Name: "Di Moss", Company: "Harbor Labs", Stage: crm.LeadStageWon, Value: decimal.NewFromInt(1200), Source: "referral"},
	}
}

func newRecordRouter(t *testing.T) *gin.Engine {
	t.Helper()
	idem := cache.NewMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = idem.Close() })

	svc, err := records.NewSeeded(crm.LeadSchema(), seedLeads(), records.Deps{Idempotency: idem, IdempotencyTTL: time.Hour})
	require.NoError(t, err)
	reg := records.NewRegistry()
	reg.Register(records.AsModule(svc))

	h := NewRecordHandler(reg)
	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.GET("/modules", h.Catalogue)
	api.GET("/:module", h.List)
	api.POST("/:module", h.Create)
	api.POST("/:module/reset", h.Reset)
	api.GET("/:module/:id", h.Get)
	api.PUT("/:module/:id", h.Update)
	api.POST("/:module/:id/transition", h.Transition)
	api.POST("/:module/:id/advance", h.Advance)
	return r
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type leadList struct {
	Success bool       `json:"success"`
	Data    []crm.Lead `json:"data"`
	Meta    dto.Meta   `json:"meta"`
}

func listLeads(t *testing.T, r http.Handler, query string) leadList {
	t.Helper()
	w := do(r, http.MethodGet, "/api/v1/pipeline"+query, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out leadList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func ids(leads []crm.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func TestParseListQuery(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet,
		"/x?search=+harbor+&status=new,won&status=lost&source=ads&sort=value&order=DESC&page=2&page_size=5&group=status&owner=", nil)

	q := ParseListQuery(c)
	assert.Equal(t, "harbor", q.Search)
	assert.Equal(t, "value", q.Sort)
	assert.True(t, q.Descending())
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.PageSize)
	assert.Equal(t, "status", q.Group)
	assert.Equal(t, map[string][]string{
		"status": {"new", "won", "lost"},
		"source": {"ads"},
	}, q.Filters)
}

func TestRecordHandler_List(t *testing.T) {
	r := newRecordRouter(t)

	t.Run("unfiltered keeps seed order", func(t *testing.T) {
		out := listLeads(t, r, "")
		assert.Equal(t, []string{"lead-001", "lead-002", "lead-003", "lead-004"}, ids(out.Data))
		assert.Equal(t, int64(4), out.Meta.Total)
		assert.Equal(t, 2, out.Meta.Facets["new"])
	})

	t.Run("search and facet", func(t *testing.T) {
		out := listLeads(t, r, "?search=harbor&source=referral&sort=value&order=desc")
		assert.Equal(t, []string{"lead-001", "lead-004"}, ids(out.Data))
	})

	t.Run("status facet", func(t *testing.T) {
		out := listLeads(t, r, "?status=new")
		assert.Equal(t, []string{"lead-001", "lead-003"}, ids(out.Data))
		assert.Equal(t, map[string]int{"new": 2}, out.Meta.Facets)
	})

	t.Run("paging", func(t *testing.T) {
		out := listLeads(t, r, "?page=2&page_size=3")
		assert.Equal(t, []string{"lead-004"}, ids(out.Data))
		assert.Equal(t, 2, out.Meta.TotalPages)
	})

	t.Run("unknown module", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/v1/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRecordHandler_ListGrouped(t *testing.T) {
	r := newRecordRouter(t)
	w := do(r, http.MethodGet, "/api/v1/pipeline?group=status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Data []records.GroupView[crm.Lead] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Data)
	assert.Equal(t, "new", out.Data[0].Status)
	assert.Equal(t, 2, out.Data[0].Count)
}

func TestRecordHandler_Get(t *testing.T) {
	r := newRecordRouter(t)

	w := do(r, http.MethodGet, "/api/v1/pipeline/lead-001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Data records.Detail[crm.Lead] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Ana Ruiz", out.Data.Record.Name)
	require.Len(t, out.Data.Brands, 1)
	assert.Equal(t, "Lumen Media", out.Data.Brands[0].Name)
	assert.Equal(t, "contacted", out.Data.NextStatus)

	w = do(r, http.MethodGet, "/api/v1/pipeline/lead-404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordHandler_Create(t *testing.T) {
	r := newRecordRouter(t)

	w := do(r, http.MethodPost, "/api/v1/pipeline", `{"name":"Eve","company":"Orbit","value":"300"}`, IdempotencyKeyHeader, "k-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		Data records.Detail[crm.Lead] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Data.Record.ID)
	assert.NotContains(t, []string{"lead-001", "lead-002", "lead-003", "lead-004"}, out.Data.Record.ID)
	assert.Equal(t, crm.LeadStageNew, out.Data.Record.Stage)
	assert.Len(t, listLeads(t, r, "").Data, 5)

	t.Run("replayed key", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/v1/pipeline", `{"name":"Eve","company":"Orbit"}`, IdempotencyKeyHeader, "k-1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Len(t, listLeads(t, r, "").Data, 5)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/v1/pipeline", `{"name":"  "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.ElementsMatch(t, []string{"name", "company"}, resp.Error.Fields)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/v1/pipeline", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/v1/pipeline", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})
}

func TestRecordHandler_TransitionAndAdvance(t *testing.T) {
	r := newRecordRouter(t)

	w := do(r, http.MethodPost, "/api/v1/pipeline/lead-002/transition", `{"status":"lost"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	after := listLeads(t, r, "")
	assert.Equal(t, crm.LeadStageLost, after.Data[1].Stage)
	for i, lead := range seedLeads() {
		if lead.ID == "lead-002" {
			continue
		}
		assert.Equal(t, lead.Stage, after.Data[i].Stage, lead.ID)
	}

	w = do(r, http.MethodPost, "/api/v1/pipeline/lead-002/transition", `{"status":"sideways"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/api/v1/pipeline/lead-002/transition", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"status"}, decodeResponse(t, w).Error.Fields)

	w = do(r, http.MethodPost, "/api/v1/pipeline/lead-001/advance", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, crm.LeadStageContacted, listLeads(t, r, "").Data[0].Stage)
}

func TestRecordHandler_UpdateAndReset(t *testing.T) {
	r := newRecordRouter(t)

	w := do(r, http.MethodPut, "/api/v1/pipeline/lead-003", `{"name":"Cy Park","company":"Fieldhouse Ltd","stage":"proposal","value":"75"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Fieldhouse Ltd", listLeads(t, r, "").Data[2].Company)

	w = do(r, http.MethodPost, "/api/v1/pipeline/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Data ResetResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, ResetResponse{Module: "pipeline", Records: 4}, out.Data)
	assert.Equal(t, "Fieldhouse", listLeads(t, r, "").Data[2].Company)
}

func TestRecordHandler_Catalogue(t *testing.T) {
	r := newRecordRouter(t)
	w := do(r, http.MethodGet, "/api/v1/modules", "")
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Data []records.Descriptor `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "pipeline", out.Data[0].Name)
	assert.Contains(t, out.Data[0].Statuses, "lost")
	assert.Contains(t, out.Data[0].Sorts, "value")
}
