package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskportal/internal/handler"
)

// Pinger reports storage readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Auth      *handler.AuthHandler
	Employees *handler.EmployeeHandler
	Tasks     *handler.TaskHandler
	Activity  *handler.ActivityHandler
}

func NewRouter(h Handlers, storage Pinger, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), LoggingMiddleware(logger), MetricsMiddleware())

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := storage.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "storage_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/login", h.Auth.Login)

		api.GET("/employees", h.Employees.List)
		api.POST("/employees", h.Employees.Create)
		api.PUT("/employees/:id", h.Employees.Update)
		api.DELETE("/employees/:id", h.Employees.Delete)

		api.GET("/tasks", h.Tasks.List)
		api.POST("/tasks", h.Tasks.Create)
		api.PUT("/tasks/:id", h.Tasks.Update)
		api.DELETE("/tasks/:id", h.Tasks.Delete)

		if h.Activity != nil {
			api.GET("/activity", h.Activity.List)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
