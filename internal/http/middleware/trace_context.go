package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/odnalezione/odnalezione-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext tags every import and review request with a trace id and
// a request id, both echoed back to the caller. The active otel span's trace
// id takes precedence over X-Trace-Id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ids := &ctxutil.TraceData{
			TraceID:   firstNonEmpty(spanTraceID(ctx), c.GetHeader(headerTraceID)),
			RequestID: firstNonEmpty(c.GetHeader(headerRequestID)),
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("http.request_id", ids.RequestID))

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, ids))
		h := c.Writer.Header()
		h.Set(headerTraceID, ids.TraceID)
		h.Set(headerRequestID, ids.RequestID)
		c.Next()
	}
}

func spanTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// firstNonEmpty returns the first non-blank candidate, or a fresh uuid.
func firstNonEmpty(candidates ...string) string {
	for _, s := range candidates {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return uuid.NewString()
}
