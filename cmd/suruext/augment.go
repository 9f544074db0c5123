package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/suruext/internal/config"
	"github.com/nao1215/suruext/internal/database"
	"github.com/nao1215/suruext/internal/model"
	"github.com/nao1215/suruext/internal/pipeline"
)

// NewAugmentCmd creates the augment command.
func NewAugmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "augment [page-url-or-file]...",
		Short: "Augment SURU entry pages with Wikidata lexemes",
		Long: `Augment reads SURU dictionary entry pages and adds Wikidata lexeme data.

For each page it:
- Scrapes the headword and the Swedish translations (span.vastine)
- Looks up the Finnish lexemes carrying the entry's SURU id (P12682)
- Looks up the Swedish nouns matching each translation
- Fetches the Wikipedia sitelinks of every item shown
- Renders the results as an HTML fragment

Targets may be http(s) URLs or local HTML files. The SURU id is taken from
the suru_id query parameter of the URL unless --suru-id is given.

Examples:
  # Print the HTML fragment for an entry page
  suruext augment "https://example.org/suru?suru_id=SURU_7107788c441b76dfdb12e2eb7ab5a1a2"

  # Augment a saved page and write it back with the fragment inserted
  suruext augment --suru-id SURU_7107788c441b76dfdb12e2eb7ab5a1a2 --inject -o out.html page.html

  # Terminal tables instead of HTML
  suruext augment --text page.html

  # JSON report of several pages
  suruext augment --json a.html b.html`,
		Args: cobra.ArbitraryArgs,
		RunE: runAugmentCmd,
	}

	addServiceFlags(cmd)

	cmd.Flags().StringP("suru-id", "s", "",
		"SURU id to use instead of the one in the page URL (single target only)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of pages augmented concurrently")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Maximum Wikidata lookups in flight per page (0 = unlimited)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report")
	cmd.Flags().Bool("text", false,
		"Output terminal tables")
	cmd.Flags().BoolP("inject", "i", false,
		"Output the whole page with the fragment inserted (HTML only)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to the specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not record the results in the history database")

	return cmd
}

// runAugmentCmd executes the augment command.
func runAugmentCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAugmentConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	out, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer out.Close()

	return runAugment(ctx, cfg, out, logger)
}

// buildAugmentConfig creates a Config from the command flags.
func buildAugmentConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := applyServiceFlags(cmd, cfg); err != nil {
		return nil, err
	}

	var err error
	if cfg.SuruID, err = cmd.Flags().GetString("suru-id"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("concurrency") {
		if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.TextReport, err = cmd.Flags().GetBool("text"); err != nil {
		return nil, err
	}
	if cfg.Inject, err = cmd.Flags().GetBool("inject"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.Targets = args
	return cfg, nil
}

// runAugment augments every target and writes the reports to out in
// target order.
func runAugment(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	logger.Info("starting augmentation",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.ResultDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	svc, err := newServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	runner := svc.runner(cfg, logger)

	start := time.Now()
	bp := pipeline.NewBatchProcessor(runner.Factory(cfg.SuruID),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	reports, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return err
	}
	logger.Info("augmentation complete", "elapsed", time.Since(start).Round(time.Millisecond))

	writer := newReportWriter(cfg, out, svc.renderer)
	failed := 0
	for _, report := range reports {
		if report == nil {
			continue
		}
		if report.Error != "" {
			failed++
		}
		if _, err := writer.Write(report); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", report.Target, err)
		}
		saveReport(ctx, db, report, logger)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(cfg.Targets))
	}
	return nil
}

// saveReport records report when a database is open.
func saveReport(ctx context.Context, db *database.ResultDB, report *model.AugmentReport, logger *slog.Logger) {
	if db == nil {
		return
	}
	if _, err := db.SaveReport(ctx, report); err != nil {
		logger.Error("failed to save report", "target", report.Target, "error", err)
		return
	}
	logger.Info("report saved to database", "target", report.Target)
}
