package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raoulx24/mc-backup/internal/config"
	"github.com/raoulx24/mc-backup/internal/logging"
	"github.com/raoulx24/mc-backup/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	started := time.Now()
	runID := uuid.NewString()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	console, err := logging.NewConsole(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return 1
	}
	console = console.With(zap.String("run_id", runID))
	defer console.Sync()

	logPath, err := runner.Bootstrap(cfg, started)
	if err != nil {
		console.Error("bootstrap failed", zap.Error(err))
		return 1
	}

	runLog, err := logging.NewRunLog(logPath)
	if err != nil {
		console.Error("cannot open run log", zap.String("path", logPath), zap.Error(err))
		return 1
	}

	r := runner.New(cfg, logging.New(logging.Tee(console, runLog)), nil).WithRunLog(runLog)

	sum, err := r.Run(ctx, runID, started)
	if err != nil {
		console.Error("backup run aborted", zap.String("log", logPath), zap.Error(err))
		return 1
	}

	console.Info("backup run complete",
		zap.String("log", logPath),
		zap.Bool("source_missing", sum.SourceMissing),
		zap.Bool("skipped", sum.Skipped),
		zap.String("backup", sum.BackupPath),
		zap.NamedError("backup_error", sum.BackupErr),
		zap.NamedError("log_write_error", sum.LogWriteErr),
		zap.Int("archived", sum.ArchivedCount()),
		zap.Int("logs_deleted", sum.LogsDeletedCount()),
		zap.Int("archives_deleted", sum.ArchivesDeletedCount()),
		zap.Int("failures", sum.Failures()),
		zap.Duration("took", sum.Finished.Sub(sum.Started)),
	)

	// a run log with holes must not look like a clean run
	if sum.LogWriteErr != nil {
		return 1
	}
	return 0
}
