package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"charity-events/config"
)

// NewRouter assembles the API routes, CORS for the static client and the
// static file host.
func NewRouter(cfg config.ServerConfig, events *EventHandler, health *HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog())

	if len(cfg.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowOrigins,
			AllowMethods:  []string{"GET", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	events.RegisterRoutes(r)
	health.RegisterRoutes(r)

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			r.NoRoute(staticFallback(cfg.StaticDir))
		}
	}
	return r
}

// staticFallback serves files from dir for any route the API did not claim.
func staticFallback(dir string) gin.HandlerFunc {
	fs := gin.Dir(dir, false)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			respondError(c, http.StatusNotFound, "Not found")
			return
		}
		c.FileFromFS(c.Request.URL.Path, fs)
	}
}
