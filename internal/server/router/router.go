package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/biomethane/internal/observability"
	"github.com/mamadbah2/biomethane/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. A nil
// collector leaves /metrics on the default Prometheus registry.
func New(handler *handlers.ModelHandler, metrics *observability.ModelCollector, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metrics.GinMiddleware())

	v1 := r.Group("/v1")
	v1.POST("/evaluations", handler.Evaluate)
	v1.POST("/sensitivity", handler.Sensitivity)
	v1.GET("/scenario/default", handler.DefaultScenario)
	v1.GET("/feedstocks/:kind", handler.Feedstock)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
