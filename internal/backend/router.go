package backend

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/five82/dashterm/internal/dash"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard
	gin.DefaultErrorWriter = io.Discard
}

var quietPaths = map[string]bool{
	dash.PathHealth: true,
}

func newRouter(registry *dash.Registry, layout dash.Component, logger *slog.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(recovery(logger), requestLogger(logger))

	engine.GET(dash.PathHealth, func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	engine.GET(dash.PathLayout, func(c *gin.Context) {
		c.JSON(http.StatusOK, layout)
	})
	engine.GET(dash.PathDependencies, func(c *gin.Context) {
		c.JSON(http.StatusOK, registry.Dependencies())
	})
	engine.POST(dash.PathUpdate, func(c *gin.Context) {
		var req dash.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resp, err := registry.Dispatch(c.Request.Context(), req)
		switch {
		case errors.Is(err, dash.ErrUnknownOutput):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case err != nil:
			logger.ErrorContext(c.Request.Context(), "binding update failed", "output", req.Output, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, resp)
		}
	})
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "path": c.Request.URL.Path})
	})
	return engine
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if quietPaths[path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.DebugContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
		)
	}
}

func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(c.Request.Context(), "panic while serving request",
					"path", c.Request.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}
