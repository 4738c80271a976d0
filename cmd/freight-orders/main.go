package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/freight-orders/internal/async"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/export"
	"github.com/joseph-ayodele/freight-orders/internal/ingest"
	repo "github.com/joseph-ayodele/freight-orders/internal/repository"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "freight-orders",
		Short: "Turn carrier transport documents into normalized orders",
		Long: `freight-orders reads transport-order documents (PDF or text), detects
the carrier template and produces one normalized order per document.

Persistence is configured through the environment:
  DB_DRIVER=postgres|sqlite  DB_URL=...  (unset: orders are printed only)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(migrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse documents and print the normalized orders as JSON",
		Example: `  freight-orders parse order.pdf
  freight-orders parse --save scans/*.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			save, _ := cmd.Flags().GetBool("save")
			compact, _ := cmd.Flags().GetBool("compact")

			a, err := newApp(cmd.Context(), save)
			if err != nil {
				return err
			}
			defer a.close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			var failed int
			for _, path := range args {
				res, err := a.processor.ProcessFile(cmd.Context(), path)
				if err != nil {
					failed++
					a.logger.Error("parse failed", "path", path, "error", err)
					continue
				}
				if err := enc.Encode(res); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().Bool("save", false, "store orders in the configured database")
	cmd.Flags().Bool("compact", false, "one JSON object per line")
	return cmd
}

func newQueue(a *app) *async.ProcessorQueue {
	return async.NewProcessorQueue(a.processor, a.logger,
		async.WithWorkers(a.cfg.Ingest.Workers),
		async.WithQueueSize(a.cfg.Ingest.QueueSize),
		async.WithProcessTimeout(a.cfg.Ingest.ProcessTimeout),
	)
}

func drain(q *async.ProcessorQueue, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	q.Shutdown(ctx)
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Parse every document under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exts, _ := cmd.Flags().GetStringSlice("ext")
			skipHidden, _ := cmd.Flags().GetBool("skip-hidden")

			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			q := newQueue(a)
			ing := ingest.NewDirIngestor(q, ingest.ScanOptions{AllowedExts: ingest.ParseExts(exts), SkipHidden: skipHidden}, a.logger)
			stats, err := ing.IngestDirectory(cmd.Context(), args[0])
			drain(q, a.cfg.Ingest.ProcessTimeout+time.Minute)
			if err != nil {
				return err
			}

			qs := q.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d matched=%d queued=%d processed=%d fallback=%d failed=%d\n",
				stats.Scanned, stats.Matched, stats.Queued, qs.Processed, qs.Fallback, qs.Failed+uint64(stats.Failed))
			for _, f := range stats.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Path, f.Err)
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("ext", nil, "file extensions to include (default pdf,txt)")
	cmd.Flags().Bool("skip-hidden", true, "skip dot files and directories")
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Parse documents as they appear in watched directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exts, _ := cmd.Flags().GetStringSlice("ext")

			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			q := newQueue(a)
			defer drain(q, a.cfg.Ingest.ProcessTimeout)
			ing := ingest.NewDirIngestor(q, ingest.ScanOptions{}, a.logger)

			events, errs, err := ingest.StartWatcher(cmd.Context(), ingest.WatchConfig{
				Roots:       args,
				AllowedExts: ingest.ParseExts(exts),
				SkipHidden:  true,
				InitialScan: a.cfg.Ingest.InitialScan,
				Debounce:    a.cfg.Ingest.Debounce,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.Info("watching for documents", "roots", args)

			for {
				select {
				case path, ok := <-events:
					if !ok {
						return nil
					}
					if err := ing.Submit(cmd.Context(), path); err != nil && !errors.Is(err, context.Canceled) {
						a.logger.Warn("failed to queue document", "path", path, "error", err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					a.logger.Warn("watcher reported an error", "error", err)
				}
			}
		},
	}
	cmd.Flags().StringSlice("ext", nil, "file extensions to include (default pdf,txt)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored orders to an XLSX workbook",
		Example: `  freight-orders export --out orders.xlsx --from 2025-03-01 --to 2025-03-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			fromStr, _ := cmd.Flags().GetString("from")
			toStr, _ := cmd.Flags().GetString("to")

			from, err := parseDay(fromStr)
			if err != nil {
				return err
			}
			to, err := parseDay(toStr)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()
			if a.orders == nil {
				return common.NewAppError("CONFIG_ERROR", "export needs DB_DRIVER and DB_URL", common.ErrInvalidInput)
			}

			b, err := export.NewService(a.orders, a.logger).ExportOrdersXLSX(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(b))
			return nil
		},
	}
	cmd.Flags().String("out", "orders.xlsx", "output workbook path")
	cmd.Flags().String("from", "", "first day (YYYY-MM-DD), inclusive")
	cmd.Flags().String("to", "", "last day (YYYY-MM-DD), inclusive")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the orders table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !cfg.PersistenceEnabled() {
				return common.NewAppError("CONFIG_ERROR", "migrate needs DB_DRIVER and DB_URL", common.ErrInvalidInput)
			}
			logger := newLogger(os.Stderr, cfg.Log)
			db, err := openDB(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer repo.Close(db, logger)
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, common.NewAppError("INVALID_DATE", fmt.Sprintf("invalid date %q, want YYYY-MM-DD", s), common.ErrInvalidInput)
	}
	return &t, nil
}
