package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/odnalezione/odnalezione-backend/internal/http/handlers"
	httpMW "github.com/odnalezione/odnalezione-backend/internal/http/middleware"
	"github.com/odnalezione/odnalezione-backend/internal/observability"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	Metrics         *observability.Metrics
	ServiceName     string
	MaxRequestBytes int64

	ImportHandler *httpH.ImportHandler
	DraftHandler  *httpH.DraftHandler
	HealthHandler *httpH.HealthHandler
}

var processRoutes = []string{"/", "/api/process"}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())
	r.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	// Processing
	if cfg.ImportHandler != nil {
		for _, path := range processRoutes {
			r.POST(path, cfg.ImportHandler.Process)
			r.OPTIONS(path, func(c *gin.Context) { c.Status(http.StatusNoContent) })
			for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead} {
				r.Handle(m, path, cfg.ImportHandler.MethodNotAllowed)
			}
		}
	}

	// Review drafts
	if cfg.DraftHandler != nil {
		drafts := r.Group("/api/drafts")
		drafts.GET("", cfg.DraftHandler.List)
		drafts.GET("/:fileName", cfg.DraftHandler.Get)
		drafts.PUT("/:fileName", cfg.DraftHandler.Put)
		drafts.POST("/:fileName/actions", cfg.DraftHandler.Apply)
		drafts.DELETE("/:fileName", cfg.DraftHandler.Delete)
	}

	return r
}
