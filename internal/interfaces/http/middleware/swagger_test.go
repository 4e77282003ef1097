package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveDocs(cfg SwaggerConfig, jwt gin.HandlerFunc, remoteAddr string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSwaggerProtection(t *testing.T) {
	denyJWT := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false})
	}
	allowJWT := func(c *gin.Context) {}

	tests := []struct {
		name       string
		cfg        SwaggerConfig
		jwt        gin.HandlerFunc
		remoteAddr string
		wantStatus int
		wantCode   string
	}{
		{"disabled", SwaggerConfig{}, nil, "127.0.0.1:1234", http.StatusNotFound, "NOT_FOUND"},
		{"open", SwaggerConfig{Enabled: true}, nil, "192.168.1.1:1234", http.StatusOK, ""},
		{"allowed ip", SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}}, nil, "127.0.0.1:1234", http.StatusOK, ""},
		{"denied ip", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, nil, "192.168.1.1:1234", http.StatusForbidden, "FORBIDDEN"},
		{"inside cidr", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, nil, "10.50.100.200:1234", http.StatusOK, ""},
		{"outside cidr", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, nil, "192.168.1.1:1234", http.StatusForbidden, "FORBIDDEN"},
		{"token rejected", SwaggerConfig{Enabled: true, RequireAuth: true}, denyJWT, "127.0.0.1:1234", http.StatusUnauthorized, ""},
		{"token accepted", SwaggerConfig{Enabled: true, RequireAuth: true}, allowJWT, "127.0.0.1:1234", http.StatusOK, ""},
		{"ip checked before token", SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.1"}}, allowJWT, "192.168.1.1:1234", http.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveDocs(tt.cfg, tt.jwt, tt.remoteAddr)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
		})
	}
}
