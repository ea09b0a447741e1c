// Package main provides the retailcore binary entry point.
// Retailcore is a single-process retail management demo with an in-memory
// transactional store, role-gated menus, and aggregate reports.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	adapterreports "retailcore/internal/adapters/reports"
	"retailcore/internal/blob"
	"retailcore/internal/cli"
	"retailcore/internal/config"
	"retailcore/internal/core"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "retailcore"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "In-memory retail management demo",
		Long: `Retailcore tracks products, customers, sellers, and sales in a
single-process transactional store. It provides a role-gated interactive
dashboard, aggregate reports, and report export to blob storage.

All state lives in memory and is seeded with a demo dataset at startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(configPath, logLevel)
			if err != nil {
				return err
			}
			shell := cli.NewShell(app.service, app.reports, os.Stdin, os.Stdout, app.logger)
			return shell.Run(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "reports",
		Short: "Interactive reporting menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(configPath, logLevel)
			if err != nil {
				return err
			}
			shell := cli.NewShell(app.service, app.reports, os.Stdin, os.Stdout, app.logger)
			return shell.RunReportsMenu(cmd.Context())
		},
	})

	cmd.AddCommand(exportCmd(&configPath, &logLevel))

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func exportCmd(configPath, logLevel *string) *cobra.Command {
	var (
		report    string
		formats   []string
		limit     int
		threshold int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a report to blob storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(*configPath, *logLevel)
			if err != nil {
				return err
			}
			store, err := blob.OpenDriver(cmd.Context(), app.cfg.Blob.Driver, app.cfg.Blob.FSRoot)
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}
			worker := adapterreports.NewWorker(app.reports, store, core.NewSlogAuditRecorder(app.logger))
			worker.Start()
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = worker.Stop(stopCtx)
			}()

			wanted := make([]adapterreports.Format, 0, len(formats))
			for _, f := range formats {
				wanted = append(wanted, adapterreports.Format(f))
			}
			record, err := worker.Enqueue(cmd.Context(), adapterreports.ExportInput{
				Report:      adapterreports.Kind(report),
				Formats:     wanted,
				Limit:       limit,
				Threshold:   threshold,
				RequestedBy: "cli",
			})
			if err != nil {
				return err
			}

			// Poll until the job reaches a terminal state.
			for {
				snapshot, ok := worker.Get(record.ID)
				if !ok {
					return fmt.Errorf("export %s disappeared", record.ID)
				}
				switch snapshot.Status {
				case adapterreports.ExportStatusSucceeded:
					for _, artifact := range snapshot.Artifacts {
						fmt.Printf("%s (%s, %d bytes)\n", artifact.Key, artifact.ContentType, artifact.SizeBytes)
					}
					return nil
				case adapterreports.ExportStatusFailed:
					return fmt.Errorf("export failed: %s", snapshot.Error)
				}
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(50 * time.Millisecond):
				}
			}
		},
	}
	cmd.Flags().StringVar(&report, "report", string(adapterreports.KindDailyRevenue), "Report: daily_revenue, top_products, revenue_by_seller, low_stock")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "Formats: json, csv (default both)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Row limit for top_products (0 = default)")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Stock threshold for low_stock (0 = default)")
	return cmd
}

// app bundles the wired collaborators shared by all commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *core.Service
	reports *core.ReportGenerator
}

func newApp(configPath, logLevel string) (*app, error) {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.NewLoader(bootstrapLogger).Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = strings.ToLower(logLevel)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	engine := core.DefaultRulesEngine()
	store, err := core.OpenStore(engine, cfg.Storage.Driver)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	service := core.NewService(store,
		core.WithAuditRecorder(core.NewSlogAuditRecorder(logger)),
		core.WithMetricsRecorder(core.NewExpvarMetricsRecorder("retailcore_service")),
	)

	if cfg.Seed.DemoEnabled() {
		if err := core.SeedDemoData(context.Background(), store); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Debug("Demo dataset seeded")
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		service: service,
		reports: core.NewReportGenerator(store),
	}, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
