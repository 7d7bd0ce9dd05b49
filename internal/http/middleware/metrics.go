package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/odnalezione/odnalezione-backend/internal/observability"
)

// Metrics records in-flight count, status and latency per route. A nil m
// yields a pass-through handler.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		m.APIInflightInc()
		start := time.Now()
		defer func() {
			m.APIInflightDec()
			m.ObserveAPI(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
		}()
		c.Next()
	}
}
