package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wn7ant/eve-value/pkg/config"
	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/metrics"
	"github.com/wn7ant/eve-value/pkg/server/api"
	"github.com/wn7ant/eve-value/pkg/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the value tracker service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup("")
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg, logger)
	},
}

func runServe(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting eve-value", "version", version.Version, "plans", cfg.PlansEnabled())

	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	refresher, err := buildRefresher(cfg, logger)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg.Server.HTTP.Addr, refresher, logger)
	if cfg.Server.HTTP.TLS.Enabled {
		server.SetTLS(cfg.Server.HTTP.TLS.Cert, cfg.Server.HTTP.TLS.Key)
	}

	var wsServer *api.WebSocketServer
	if cfg.Server.WebSocket.Enabled {
		wsServer = api.NewWebSocketServer(cfg.Server.WebSocket.Addr, logger)
		refresher.Subscribe(wsServer.SendUpdate)

		go func() {
			if err := wsServer.Start(ctx); err != nil {
				logger.Error("WebSocket server error", "error", err)
			}
		}()
	}

	errChan := make(chan error, 2)
	go func() {
		errChan <- refresher.Run(ctx)
	}()
	go func() {
		errChan <- server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case runErr = <-errChan:
		if runErr != nil {
			logger.Error("Component failed", "error", runErr.Error())
		}
		cancel()
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down gracefully...")
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err.Error())
	}
	if wsServer != nil {
		wsServer.Stop()
	}
	logger.Info("Shutdown complete")

	return runErr
}
