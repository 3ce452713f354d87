package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agencyos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler("agencyos", "1.2.0", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	health := decodeHealth(t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "agencyos", health.Name)
	assert.Equal(t, "1.2.0", health.Version)
	assert.NotEmpty(t, health.GoVersion)
	assert.Empty(t, health.Dependencies)
}

func TestSystemHandler_HealthDegraded(t *testing.T) {
	h := NewSystemHandler("agencyos", "dev", map[string]Check{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	h.Health(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	health := decodeHealth(t, w)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "up", health.Dependencies["database"])
	assert.Equal(t, "down: connection refused", health.Dependencies["redis"])
}

func TestSystemHandler_Brands(t *testing.T) {
	h := NewSystemHandler("agencyos", "dev", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/brands", nil)
	h.Brands(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data)
}
