package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the job worker pool without the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			defer ctx.close()

			if workers <= 0 {
				workers = app.Config.Queue.Workers
			}

			app.RecoverInflight(cmd.Context())
			if err := app.Pool.StartWorkerPool(context.WithoutCancel(cmd.Context()), workers); err != nil {
				return err
			}

			<-cmd.Context().Done()
			app.Logger.Info("🛑 Signal received, draining workers", zap.Int("workers", workers))
			return app.Pool.StopWorkerPool()
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (default QUEUE_WORKERS)")

	return cmd
}
