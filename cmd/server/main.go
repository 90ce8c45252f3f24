package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yksanjo/chat-app-tcp/internal/app"
	"github.com/yksanjo/chat-app-tcp/internal/config"
	"github.com/yksanjo/chat-app-tcp/internal/log"
)

func main() {
	var (
		cfgPath   string
		overrides config.Config
	)

	root := &cobra.Command{
		Use:           "chat-server",
		Short:         "TCP chat server with broadcasts, whispers, and a user roster",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(overrides.LogLevel)

			cfg, path, err := config.Load(logger, cfgPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)
			logger = log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Msg("configuration loaded")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application := app.New(cfg, logger)
			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to config file")
	flags.StringVar(&overrides.ListenAddr, "listen", "", "TCP chat listen address")
	flags.StringVar(&overrides.HTTPAddr, "http", "", "HTTP listen address")
	flags.IntVar(&overrides.MaxSessions, "max-sessions", 0, "maximum concurrent sessions")
	flags.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		logger := log.New("error")
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}
