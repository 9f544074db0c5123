package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/suruext/internal/config"
	"github.com/nao1215/suruext/internal/log"
	"github.com/nao1215/suruext/internal/matcher"
)

// NewMatchCmd creates the match command.
func NewMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <input.xlsx>",
		Short: "Match dictionary rows to Wikidata lexemes and items",
		Long: `Match reads a sheet with the columns headword, Sanaluokka (word class)
and translations, searches Wikidata for each row and writes the sheet back
with these columns filled:
  Lfi_value   matching Finnish lexeme
  Lfi_url     its URL
  p5137       the item its first sense denotes (P5137)
  object      the best item for the headword ("Q;title")
  sv_objects  the best item for each Swedish translation, " | "-joined

Rows whose lookup fails are logged and left empty.

Examples:
  suruext match entries.xlsx
  suruext match entries.xlsx -o matched.xlsx --concurrency 8`,
		Args: cobra.ExactArgs(1),
		RunE: runMatchCmd,
	}

	addServiceFlags(cmd)
	cmd.Flags().StringP("output", "o", "",
		"XLSX file to write (default: <input>_matched.xlsx)")
	cmd.Flags().Int("concurrency", matcher.DefaultConcurrency,
		"Rows matched at the same time")

	return cmd
}

// runMatchCmd executes the match command.
func runMatchCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	if err := applyServiceFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.ValidateService(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		output = matchedPath(args[0])
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	return runMatch(ctx, cfg, args[0], output, concurrency, cmd.OutOrStdout(), logger)
}

// runMatch matches in against Wikidata and writes out.
func runMatch(ctx context.Context, cfg *config.Config, in, out string, concurrency int, w io.Writer, logger *slog.Logger) error {
	svc, err := newServices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	m := matcher.New(svc.action,
		matcher.WithLogger(log.Component(logger, "matcher")),
		matcher.WithConcurrency(concurrency),
	)
	res, err := m.MatchFile(ctx, in, out)
	if err != nil {
		return fmt.Errorf("failed to match %s: %w", in, err)
	}

	fmt.Fprintf(w, "Matched %d rows: %d lexemes, %d items", res.Rows, res.Lexemes, res.Objects)
	if res.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", res.Failed)
	}
	fmt.Fprintf(w, "\nWrote %s\n", out)
	return nil
}

// matchedPath derives the default output name from the input.
func matchedPath(in string) string {
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + "_matched.xlsx"
}
