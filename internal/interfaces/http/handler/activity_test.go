package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	activityapp "github.com/agencyos/backend/internal/application/activity"
	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/infrastructure/persistence/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityHandler_List(t *testing.T) {
	repo := memory.NewActivityRepository(10)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, e := range []activity.Entry{
		{ID: "a1", Module: "pipeline", RecordID: "lead-001", Kind: activity.KindCreated},
		{ID: "a2", Module: "tasks", RecordID: "task-001", Kind: activity.KindTransitioned},
		{ID: "a3", Module: "pipeline", RecordID: "lead-001", Kind: activity.KindTransitioned},
	} {
		e.At = at.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Append(context.Background(), e))
	}

	r := gin.New()
	r.GET("/api/v1/activity", NewActivityHandler(activityapp.NewService(repo)).List)

	w := do(r, http.MethodGet, "/api/v1/activity?module=pipeline&record_id=lead-001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Data []activity.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Data, 2)
	assert.Equal(t, "a3", out.Data[0].ID)
	assert.Equal(t, "a1", out.Data[1].ID)

	w = do(r, http.MethodGet, "/api/v1/activity?limit=1", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "a3", out.Data[0].ID)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/activity?limit=lots", "").Code)
}
