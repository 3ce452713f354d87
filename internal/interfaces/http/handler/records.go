package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the client's create key
const IdempotencyKeyHeader = "Idempotency-Key"

// reserved query parameters; every other key is a facet filter
var reservedParams = map[string]struct{}{
	"search": {}, "sort": {}, "order": {}, "page": {}, "page_size": {}, "group": {},
}

// Modules resolves record modules by name
type Modules interface {
	Get(name string) (records.Module, error)
	Describe() []records.Descriptor
}

// RecordHandler serves every record module through the same routes
type RecordHandler struct {
	BaseHandler
	modules Modules
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(modules Modules) *RecordHandler {
	return &RecordHandler{modules: modules}
}

func (h *RecordHandler) module(c *gin.Context) (records.Module, bool) {
	m, err := h.modules.Get(c.Param("module"))
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return m, true
}

// ParseListQuery reads a derived-view request from query parameters.
// Repeated or comma separated facet values are OR-ed.
func ParseListQuery(c *gin.Context) records.ListQuery {
	q := records.ListQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Sort:   c.Query("sort"),
		Order:  strings.ToLower(c.Query("order")),
		Group:  c.Query("group"),
	}
	q.Page, _ = strconv.Atoi(c.Query("page"))
	q.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	for key, values := range c.Request.URL.Query() {
		if _, ok := reservedParams[key]; ok {
			continue
		}
		var accepted []string
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					accepted = append(accepted, part)
				}
			}
		}
		if len(accepted) == 0 {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string][]string)
		}
		q.Filters[key] = accepted
	}
	return q
}

// List serves one page of the module's derived view. Paging and facet counts
// go in the response meta.
func (h *RecordHandler) List(c *gin.Context) {
	m, ok := h.module(c)
	if !ok {
		return
	}
	result, err := m.List(c.Request.Context(), ParseListQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paged, ok := result.(records.Paged)
	if !ok {
		h.Success(c, result)
		return
	}
	p := paged.Paging()
	h.SuccessWithMeta(c, paged.Payload(), dto.Meta{
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		Facets:     p.Facets,
	})
}

// Get returns one record with its brands, progress and next status
func (h *RecordHandler) Get(c *gin.Context) {
	m, ok := h.module(c)
	if !ok {
		return
	}
	detail, err := m.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Create adds a record. A replayed Idempotency-Key is rejected with 409.
func (h *RecordHandler) Create(c *gin.Context) {
	m, ok := h.module(c)
	if !ok {
		return
	}
	payload, ok := h.payload(c)
	if !ok {
		return
	}
	detail, err := m.Create(c.Request.Context(), payload, strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, detail)
}

// Update replaces the record's editable fields
func (h *RecordHandler) Update(c *gin.Context) {
	m, ok := h.module(c)
	if !ok {
		return
	}
	payload, ok := h.payload(c)
	if !ok {
		return
	}
	detail, err := m.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Transition sets any status of the module's lifecycle
func (h *RecordHandler) Transition(c *gin.Context) {
	m, ok := h.module(c)
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if !h.bind(c, &req) {
		return
	}
	detail, err := m.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Advance moves the record to its next stage
func (h *RecordHandler) Advance(c *gin.Context) {
	m, ok := h.module(c)
	if !ok {
		return
	}
	detail, err := m.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// ResetResponse reports how many seed records were restored
type ResetResponse struct {
	Module  string `json:"module"`
	Records int    `json:"records"`
}

// Reset restores the module's seed records
func (h *RecordHandler) Reset(c *gin.Context) {
	m, ok := h.module(c)
	if !ok {
		return
	}
	n, err := m.Reset(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ResetResponse{Module: m.Describe().Name, Records: n})
}

// Catalogue lists every module with its statuses, facets and sort fields
func (h *RecordHandler) Catalogue(c *gin.Context) {
	h.Success(c, h.modules.Describe())
}

func (h *RecordHandler) payload(c *gin.Context) ([]byte, bool) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, dto.ErrCodeTooLarge, "Request body could not be read")
		return nil, false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		h.Error(c, dto.ErrCodeInvalidJSON, "Request body is required")
		return nil, false
	}
	return data, true
}
