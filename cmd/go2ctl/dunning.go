package main

import (
	"fmt"
	"os"

	"github.com/go-chi/httplog"
	"github.com/go2gg/edge/config"
	"github.com/go2gg/edge/internal/postgres"
	"github.com/go2gg/edge/internal/queue"
	"github.com/spf13/cobra"
)

func dunningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dunning",
		Short: "Dunning scheduler operations",
	}

	scan := &cobra.Command{
		Use:   "scan",
		Short: "Enqueue a dunning scan on the job queue",
		Long: `Inserts a dunning_scan job. The running API workers pick it up; a scan that
is already queued absorbs the request. Reads DATABASE_URL like the API does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			reason, _ := cmd.Flags().GetString("reason")

			logger := httplog.NewLogger("go2ctl", httplog.Options{LogLevel: cfg.LogLevel})
			logger = logger.Output(os.Stderr)
			ctx := cmd.Context()

			pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.GetStartupReadinessTimeout(), logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			manager, err := queue.NewInsertOnly(pool, logger)
			if err != nil {
				return err
			}
			enqueued, err := manager.EnqueueDunningScan(ctx, reason)
			if err != nil {
				return err
			}
			if enqueued {
				fmt.Fprintln(cmd.OutOrStdout(), "dunning scan enqueued")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "dunning scan already pending")
			}
			return nil
		},
	}
	scan.Flags().String("reason", "manual", "reason recorded on the job")

	cmd.AddCommand(scan)
	return cmd
}
