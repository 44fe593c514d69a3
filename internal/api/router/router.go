package router

import (
	"log/slog"
	"net/http"
	"strings"

	"option-live/internal/api/handlers"
	"option-live/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the fixture API router.
type Options struct {
	Logger *slog.Logger
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// CORSOrigins restricts browser callers; empty allows any origin.
	CORSOrigins []string
}

func NewRouter(calc *handlers.CalculateHandler, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(opts.Logger))
	router.Use(middleware.CORS(opts.CORSOrigins...))
	router.Use(middleware.ErrorHandler(opts.Logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// Same route as the reference pricing service, so clients need no changes.
	router.POST("/api/calculate", calc.Calculate)

	api := router.Group("/api/v1")
	{
		api.GET("/fixtures", calc.ListFixtures)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.String(http.StatusNotFound, "option-live fixture API")
	})

	return router
}
