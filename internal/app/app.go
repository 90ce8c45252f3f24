// Package app wires the chat core, the TCP lifecycle, and the web
// transport together into one runnable unit.
package app

import (
	"context"
	stdhttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yksanjo/chat-app-tcp/internal/chat"
	"github.com/yksanjo/chat-app-tcp/internal/config"
	"github.com/yksanjo/chat-app-tcp/internal/server"
	"github.com/yksanjo/chat-app-tcp/internal/transport/web"
)

// App owns the shared registry and both listeners.
type App struct {
	cfg      config.Config
	log      *zerolog.Logger
	registry *chat.Registry
	tcp      *server.Server
	web      *stdhttp.Server
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := chat.NewMetrics(promReg)

	registry := chat.NewRegistry()
	router := chat.NewRouter(registry, logger, metrics)
	handler := chat.NewHandler(registry, router, logger, metrics, cfg.MaxLineBytes)

	return &App{
		cfg:      cfg,
		log:      logger,
		registry: registry,
		tcp:      server.New(cfg, registry, handler, logger),
		web:      web.NewServer(cfg, handler, registry, promReg, logger),
	}
}

// Run starts both listeners and blocks until context cancellation or a
// fatal listener error.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.tcp.Run(ctx)
	})

	g.Go(func() error {
		a.log.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.web.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		return a.web.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
