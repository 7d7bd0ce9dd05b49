package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/odnalezione/odnalezione-backend/internal/platform/ctxutil"
)

func TestAttachTraceContextKeepsIncomingRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen != "req-1" {
		t.Fatalf("request id in context=%q", seen)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "req-1" {
		t.Fatalf("response header=%q", got)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("missing trace id header")
	}
}

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var td *ctxutil.TraceData
	r.POST("/api/process", func(c *gin.Context) {
		td = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/process", nil)
	req.Header.Set("X-Trace-Id", "  trace-7  ")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if td == nil || td.TraceID != "trace-7" {
		t.Fatalf("trace data=%+v", td)
	}
	if td.RequestID == "" || rec.Header().Get("X-Request-Id") != td.RequestID {
		t.Fatalf("request id context=%q header=%q", td.RequestID, rec.Header().Get("X-Request-Id"))
	}
}
