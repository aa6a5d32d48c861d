package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adasatorres/check-migration-addons/checker"
	"github.com/adasatorres/check-migration-addons/config"
	"github.com/adasatorres/check-migration-addons/github"
	"github.com/adasatorres/check-migration-addons/report"
	"github.com/adasatorres/check-migration-addons/sheet"
)

var version = "dev"

type options struct {
	file   string
	branch string
	token  string
}

func main() {
	// Bootstrap logger (before config is available)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("check-migration-addons failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "check-migration-addons",
		Short:         "Check which add-ons listed in a spreadsheet are migrated to a GitHub branch",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.branch) == "" {
				return errors.New("--branch must not be empty")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Re-initialize logger with configured level and format
			initLogger(&cfg.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "input spreadsheet with the list of repositories and add-ons")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "target branch to check")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub personal access token (may be empty)")
	for _, name := range []string{"file", "branch", "token"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts *options, out io.Writer) error {
	slog.Info("starting check-migration-addons", "version", version, "branch", opts.branch)

	rows, err := sheet.Read(opts.file, &cfg.Columns)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	client, err := github.NewClient(ctx, opts.token, &cfg.GitHub)
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub client: %w", err)
	}

	chk := checker.New(client, &cfg.GitHub, opts.branch)
	outcomes := chk.CheckAll(ctx, rows, cfg.Run.Concurrency)
	results := checker.OutputRows(outcomes)

	if err := report.Print(out, cfg.Columns.Headers, results); err != nil {
		return fmt.Errorf("failed to print results: %w", err)
	}

	outPath := sheet.OutputPath(opts.file)
	slog.Info("saving results", "path", outPath)
	if err := sheet.Write(outPath, &cfg.Columns, results); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	counts := checker.Summary(outcomes)
	slog.Info("check-migration-addons finished",
		"rows", len(outcomes),
		"migrated", counts[checker.StatusMigrated],
		"pending_review", counts[checker.StatusPendingReview],
		"not_found", counts[checker.StatusNotFound],
	)
	return nil
}

func initLogger(logCfg *config.LogConfig) {
	level := logCfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(logCfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
