// The worker runs the checklist engine on a schedule: it materializes
// upcoming task instances from each task's frequencies and the holiday
// calendar, and advances overdue/missed status transitions.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxops/checklist/internal/config"
	sqlstorage "github.com/rxops/checklist/internal/storage/sql"
	"github.com/rxops/checklist/internal/worker"
	"github.com/rxops/checklist/pkg/observability"
)

const serviceName = "checklist-worker"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	providers, err := observability.Setup(ctx, serviceName, "1.0.0", cfg.OTelEnabled)
	if err != nil {
		log.Fatalf("Failed to set up observability: %v", err)
	}
	slog.SetDefault(providers.Logger)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("Observability shutdown error: %v", err)
		}
	}()

	store, err := sqlstorage.NewStore(ctx, sqlstorage.DBConfig{
		Driver: cfg.DBDriver,
		DSN:    cfg.DBDSN,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}
	restDays, err := cfg.RestWeekdays()
	if err != nil {
		log.Fatalf("Invalid rest days: %v", err)
	}

	w := worker.New(store,
		worker.WithHorizonDays(cfg.HorizonDays),
		worker.WithGenerateInterval(cfg.GenerateInterval),
		worker.WithStatusInterval(cfg.StatusInterval),
		worker.WithOperationTimeout(cfg.OperationTimeout),
		worker.WithLocation(loc),
		worker.WithRestDays(restDays),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	select {
	case <-sigChan:
		slog.Info("Received shutdown signal, stopping worker...")
		cancel()
		<-errChan
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			slog.Error("Worker error", "error", err)
		}
	}

	slog.Info("Worker shut down gracefully")
}
