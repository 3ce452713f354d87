package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_LabelsRequestContext(t *testing.T) {
	r := gin.New()
	r.Use(Profiling(DefaultProfilingConfig()))

	labels := map[string]string{}
	r.GET("/api/v1/:module", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			labels[k] = v
			return true
		})
		c.Status(http.StatusOK)
	})
	var healthLabels int
	r.GET("/health", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(string, string) bool {
			healthLabels++
			return true
		})
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "/api/v1/:module", labels["route"])
	assert.Equal(t, http.MethodGet, labels["method"])
	assert.Equal(t, "tasks", labels["module"])
	assert.Zero(t, healthLabels)
}

func TestProfiling_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Profiling(ProfilingConfig{}))
	var ctx context.Context
	r.GET("/x", func(c *gin.Context) {
		ctx = c.Request.Context()
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	_, ok := pprof.Label(ctx, "route")
	assert.False(t, ok)
}
