package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"meeting-backend/internal/analyses"
	"meeting-backend/internal/shared/config"
	"meeting-backend/internal/shared/metrics"
	"meeting-backend/internal/shared/server/middleware"
	"meeting-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	// Limiter backs the analyze throttle; nil uses a wall-clock limiter.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	serviceName := cfg.OTelServiceName
	if serviceName == "" {
		serviceName = "meeting-backend"
	}
	r.Use(
		otelgin.Middleware(serviceName),
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	throttle := middleware.RateLimit(middleware.PerMinute(cfg.AnalyzeRatePerMinute, cfg.AnalyzeBurst), deps.Limiter)
	deps.AnalysisHandler.RegisterRoutes(api, throttle)

	r.NoRoute(staticFallback(cfg.StaticDir))
	return r
}

// staticFallback serves the dashboard for unmatched GETs when dir is set.
func staticFallback(dir string) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}
	return func(c *gin.Context) {
		method := c.Request.Method
		if files == nil || (method != http.MethodGet && method != http.MethodHead) || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			respond.Error(c, http.StatusNotFound, "Not found")
			return
		}
		target := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if _, err := os.Stat(target); err != nil {
			respond.Error(c, http.StatusNotFound, "Not found")
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
