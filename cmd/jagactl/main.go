// Package main provides jagactl, an operator CLI for one-shot maintenance
// tasks against the same stores the server uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/internal/app"
	"github.com/fastygo/sijagad/internal/config"
	"github.com/fastygo/sijagad/pkg/logger"
)

var (
	version  = "0.1.0-dev"
	logLevel string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "jagactl",
		Short:         "Maintenance commands for the SiJAGAD monitoring service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newSweepCmd(),
		newDigestCmd(),
		newReportCmd(),
		newImportCmd(),
		newExportCmd(),
		newTemplateCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// useCLIOutbox points the queue at the CLI's own file so a command can run
// next to the server, which holds the lock on the main file.
func useCLIOutbox(cfg *config.Config) {
	if cfg.Outbox.CLIPath != "" {
		cfg.Outbox.Path = cfg.Outbox.CLIPath
	}
}

// withApp builds the application, runs fn and flushes the outbox before
// shutting everything down.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	useCLIOutbox(cfg)

	log, err := logger.New(logger.Config{Level: logLevel, Encoding: "console"})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("bootstrapping: %w", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Warn("shutdown error", zap.Error(err))
		}
	}()

	if err := fn(a); err != nil {
		return err
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.Flush(flushCtx)
}
