package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfilingMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	handlerCalled := false
	r.Use(ProfilingWithConfig(ProfilingConfig{Enabled: false}))
	r.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handlerCalled)
}

func TestProfilingMiddleware_PreservesContextValues(t *testing.T) {
	r := gin.New()
	r.Use(withClaims("purchase_user"), Profiling())
	r.GET("/api/v1/purchase-orders/:id", func(c *gin.Context) {
		assert.Equal(t, "00000000-0000-0000-0000-000000000001", GetJWTTenantID(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfilingLabels(t *testing.T) {
	r := gin.New()
	var labels map[string]string
	r.Use(withClaims())
	r.POST("/api/v1/purchase-orders/:id/confirm", func(c *gin.Context) {
		labels = profilingLabels(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/1/confirm", nil))

	assert.Equal(t, map[string]string{
		telemetry.ProfilingLabelMethod:     http.MethodPost,
		telemetry.ProfilingLabelRoute:      "/api/v1/purchase-orders/:id/confirm",
		telemetry.ProfilingLabelController: "purchase-orders",
		telemetry.ProfilingLabelTenantID:   "00000000-0000-0000-0000-000000000001",
	}, labels)
}

func TestResourceOfRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/v1/projects", "projects"},
		{"/api/v1/purchase-orders/:id/confirm", "purchase-orders"},
		{"/api/v2/chatter/:model/:id/messages", "chatter"},
		{"/health", "health"},
		{"/:id", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resourceOfRoute(tt.route), tt.route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vendors"))
	assert.False(t, isVersionSegment("1"))
}
