package handler

import (
	"context"
	"strconv"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/gin-gonic/gin"
)

// ActivityReader reads the change log
type ActivityReader interface {
	Find(ctx context.Context, q activity.Query) ([]activity.Entry, error)
}

// ActivityHandler serves the change log
type ActivityHandler struct {
	BaseHandler
	log ActivityReader
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(log ActivityReader) *ActivityHandler {
	return &ActivityHandler{log: log}
}

// List returns entries newest first, narrowed by ?module=, ?record_id= and ?limit=
func (h *ActivityHandler) List(c *gin.Context) {
	q := activity.Query{
		Module:   c.Query("module"),
		RecordID: c.Query("record_id"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		q.Limit = limit
	}

	entries, err := h.log.Find(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
