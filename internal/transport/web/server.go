// Package web exposes the chat service over HTTP: liveness and roster
// endpoints, prometheus metrics, and a websocket bridge that speaks
// the same line protocol as the TCP listener.
package web

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yksanjo/chat-app-tcp/internal/chat"
	"github.com/yksanjo/chat-app-tcp/internal/config"
)

// NewServer builds the HTTP server with all routes registered.
func NewServer(cfg config.Config, handler *chat.Handler, registry *chat.Registry, gatherer prometheus.Gatherer, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	api := NewAPIHandlers(registry, logger)
	ws := NewWSHandler(handler, logger)

	router.GET("/health", healthHandler)
	router.GET("/api/users", api.Users)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/ws", ws.Serve)

	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
