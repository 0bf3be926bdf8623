package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/workmesh/talentrag/internal/config"
	"github.com/workmesh/talentrag/internal/jobs"
)

// WorkerCmd returns the worker command
func WorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the background ingest worker",
		Long:  "Claim queued ingest jobs and run the chunk/embed/store pipeline until interrupted",
		RunE:  runWorker,
	}

	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	processor := jobs.NewIngestWorker(app.Queue, app.Ingesters, cfg.WorkerBatchSize)
	worker := jobs.NewWorker(processor, cfg.WorkerPollInterval)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go worker.Start(workerCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	worker.Stop()
	return nil
}
