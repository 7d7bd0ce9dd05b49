package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows any origin. The import UI is served from arbitrary hosts and
// sends no credentials.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "OPTIONS", "GET", "PUT", "DELETE"},
		AllowHeaders:    []string{"Content-Type", "X-Requested-With", "X-Request-Id", "X-Trace-Id"},
		ExposeHeaders:   []string{"X-Request-Id", "X-Trace-Id"},
		MaxAge:          24 * time.Hour,
	})
}
