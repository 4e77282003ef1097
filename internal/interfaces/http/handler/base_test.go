package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetRequestID(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())

	w = serve(router, http.MethodGet, "/test", "")
	assert.NotEmpty(t, w.Body.String(), "generated when absent")
}

func TestBaseHandlerResponses(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.GET("/success", func(c *gin.Context) { h.Success(c, gin.H{"name": "P00001"}) })
	router.GET("/meta", func(c *gin.Context) { h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20) })
	router.POST("/created", func(c *gin.Context) { h.Created(c, gin.H{"id": "1"}) })
	router.DELETE("/gone", func(c *gin.Context) { h.NoContent(c) })

	w := serve(router, http.MethodGet, "/success", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)

	w = serve(router, http.MethodGet, "/meta", "")
	resp = decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	w = serve(router, http.MethodPost, "/created", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(router, http.MethodDelete, "/gone", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	h := &BaseHandler{}
	tests := []struct {
		name     string
		fn       func(c *gin.Context)
		status   int
		wantCode string
	}{
		{"unauthorized", func(c *gin.Context) { h.Unauthorized(c, "no") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"forbidden", func(c *gin.Context) { h.Forbidden(c, "no") }, http.StatusForbidden, dto.ErrCodeForbidden},
		{"internal", func(c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
		{"with code", func(c *gin.Context) { h.ErrorWithCode(c, "BUDGET_EXCEEDED", "over") }, http.StatusUnprocessableEntity, "BUDGET_EXCEEDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorded string
			router := gin.New()
			router.Use(middleware.RequestID())
			router.GET("/test", func(c *gin.Context) {
				tt.fn(c)
				recorded = c.GetString(middleware.ErrorCodeKey)
			})

			w := serve(router, http.MethodGet, "/test", "")
			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			assert.Equal(t, tt.wantCode, recorded, "code exposed to the tracing middleware")
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		wantCode string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"conflict", shared.ErrConcurrencyConflict, http.StatusConflict, "CONCURRENCY_CONFLICT"},
		{"business rule", shared.NewDomainError("BUDGET_EXCEEDED", "over"), http.StatusUnprocessableEntity, "BUDGET_EXCEEDED"},
		{"input", shared.NewDomainError("INVALID_CURRENCY", "bad"), http.StatusBadRequest, "INVALID_CURRENCY"},
		{"wrapped", fmt.Errorf("confirm: %w", shared.NewDomainError("NO_VALIDATOR", "none")), http.StatusUnprocessableEntity, "NO_VALIDATOR"},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			router := gin.New()
			router.GET("/test", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := serve(router, http.MethodGet, "/test", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}

	t.Run("nil writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		router := gin.New()
		router.GET("/test", func(c *gin.Context) {
			h.HandleError(c, nil)
			c.Status(http.StatusTeapot)
		})
		w := serve(router, http.MethodGet, "/test", "")
		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}

func TestBaseHandlerIdentity(t *testing.T) {
	h := &BaseHandler{}
	caller := newTestCaller("purchase_user")

	handlerFn := func(c *gin.Context) {
		tenantID, userID, ok := h.identity(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenant": tenantID, "user": userID})
	}

	t.Run("from claims", func(t *testing.T) {
		router := gin.New()
		router.GET("/test", withCaller(caller), handlerFn)
		w := serve(router, http.MethodGet, "/test", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), caller.tenantID.String())
		assert.Contains(t, w.Body.String(), caller.userID.String())
	})

	t.Run("headers are not trusted", func(t *testing.T) {
		router := gin.New()
		router.GET("/test", handlerFn)
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Tenant-ID", caller.tenantID.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetActor(t *testing.T) {
	tests := []struct {
		name        string
		caller      testCaller
		wantName    string
		cp, hod, pm bool
	}{
		{
			name:     "confirming party",
			caller:   testCaller{username: "bo", name: "Bo", groups: []string{"purchase_user", "purchase_cp"}},
			wantName: "Bo",
			cp:       true,
		},
		{
			name:     "head of department falls back to username",
			caller:   testCaller{username: "hana", groups: []string{"purchase_hod"}},
			wantName: "hana",
			hod:      true,
		},
		{
			name:     "admin approves like a manager",
			caller:   testCaller{username: "root", name: "Root", groups: []string{"admin"}},
			wantName: "Root",
			pm:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.caller.tenantID = uuid.New()
			tt.caller.userID = uuid.New()

			router := gin.New()
			router.GET("/test", withCaller(tt.caller), func(c *gin.Context) {
				actor, err := getActor(c)
				require.NoError(t, err)
				assert.Equal(t, tt.caller.userID, actor.UserID)
				assert.Equal(t, tt.wantName, actor.Name)
				assert.Equal(t, tt.cp, actor.CP)
				assert.Equal(t, tt.hod, actor.HOD)
				assert.Equal(t, tt.pm, actor.Manager)
				c.Status(http.StatusOK)
			})
			w := serve(router, http.MethodGet, "/test", "")
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestBaseHandlerPathID(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.GET("/orders/:id", func(c *gin.Context) {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	w := serve(router, http.MethodGet, "/orders/"+id.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())

	w = serve(router, http.MethodGet, "/orders/P00001", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, errorCode(t, w))
}

func TestBaseHandlerBinding(t *testing.T) {
	middleware.SetupValidator()

	type reasonBody struct {
		Reason string `json:"cancel_reason" binding:"max=10"`
	}

	h := &BaseHandler{}
	router := gin.New()
	router.POST("/required", func(c *gin.Context) {
		var req reasonBody
		if !h.bindJSON(c, &req) {
			return
		}
		c.String(http.StatusOK, req.Reason)
	})
	router.POST("/optional", func(c *gin.Context) {
		var req reasonBody
		if !h.bindOptionalJSON(c, &req) {
			return
		}
		c.String(http.StatusOK, "reason="+req.Reason)
	})

	w := serve(router, http.MethodPost, "/required", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "an empty body is not valid JSON")

	w = serve(router, http.MethodPost, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reason=", w.Body.String())

	w = serve(router, http.MethodPost, "/optional", `{"cancel_reason":"much too long a reason"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
}
