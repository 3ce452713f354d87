package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/agencyos/backend/internal/application/export"
	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/application/report"
	"github.com/agencyos/backend/internal/infrastructure/storage"
	"github.com/gin-gonic/gin"
)

// Summarizer builds the dashboard summary
type Summarizer interface {
	Summary(ctx context.Context) (*report.Summary, error)
}

// Exporter writes derived views to object storage
type Exporter interface {
	Export(ctx context.Context, module string, q records.ListQuery) (*export.Result, error)
	Download(ctx context.Context, key string) (*storage.Object, error)
}

// ReportHandler serves the dashboard summary and CSV exports
type ReportHandler struct {
	BaseHandler
	summary  Summarizer
	exporter Exporter
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(summary Summarizer, exporter Exporter) *ReportHandler {
	return &ReportHandler{summary: summary, exporter: exporter}
}

// Summary returns totals across modules
func (h *ReportHandler) Summary(c *gin.Context) {
	s, err := h.summary.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// Export writes the derived view selected by the query string to storage,
// ignoring paging, and returns where to download it.
func (h *ReportHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		h.Unavailable(c, "Exports are not configured")
		return
	}
	res, err := h.exporter.Export(c.Request.Context(), c.Param("module"), ParseListQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// Download streams an export written by Export. S3 deployments hand out
// presigned links instead; this route backs the in-memory store.
func (h *ReportHandler) Download(c *gin.Context) {
	if h.exporter == nil {
		h.Unavailable(c, "Exports are not configured")
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	obj, err := h.exporter.Download(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filename := key[strings.LastIndex(key, "/")+1:]
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}
