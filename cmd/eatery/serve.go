package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eaterybot/eatery/internal/config"
	"github.com/eaterybot/eatery/internal/db"
	"github.com/eaterybot/eatery/internal/ledger"
	"github.com/eaterybot/eatery/internal/webhook"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the fulfillment webhook server",
		Long:  "Connects to the database and serves the Dialogflow fulfillment endpoint until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "eatery.yaml", "path to eatery config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port <= 0 {
		port = cfg.Server.Port
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	orders := ledger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	// Abandoned sessions would pin their orders in memory forever; sweep
	// them on a schedule.
	reaper := cron.New()
	_, err = reaper.AddFunc(fmt.Sprintf("@every %s", cfg.Session.SweepInterval.Std()), func() {
		if dropped := orders.Prune(cfg.Session.TTL.Std()); len(dropped) > 0 {
			logger.Info("pruned stale sessions",
				zap.Int("count", len(dropped)),
				zap.Strings("sessions", dropped))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule session reaper: %w", err)
	}
	reaper.Start()
	defer reaper.Stop()

	return webhook.Start(ctx, webhook.StartOpts{
		DB:     gormDB,
		Ledger: orders,
		Port:   port,
		Logger: logger,
	})
}
