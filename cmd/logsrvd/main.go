package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ehrlich-b/logsrvd/internal/config"
	"github.com/ehrlich-b/logsrvd/internal/eventlog"
	"github.com/ehrlich-b/logsrvd/internal/frontend"
	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "logsrvd",
		Short: "session log relay and storage daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			addr, _ := cmd.Flags().GetString("addr")

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}

			if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			events, err := eventlog.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init event log: %w", err)
			}
			defer events.Close()

			srv, err := frontend.Listen(cfg, events, cfg.ListenAddr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("logsrvd listening", "addr", srv.Addr().String(), "relay-mode", cfg.RelayMode)
				errCh <- srv.Serve()
			}()

			select {
			case <-ctx.Done():
				logger.Info("logsrvd shutting down")
				return srv.Close()
			case err := <-errCh:
				return err
			}
		},
	}

	root.Flags().String("config", "/etc/logsrvd.yaml", "config file path")
	root.Flags().String("addr", ":30344", "listen address (overrides config)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
