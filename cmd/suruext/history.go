package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/suruext/internal/config"
	"github.com/nao1215/suruext/internal/database"
	"github.com/nao1215/suruext/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "Show stored augmentations and created lexemes",
		Long: `History lists what earlier runs recorded in the history database.

Without flags it lists the augmentations of the given target (or of every
target), newest first, with the number of translations found on Wikidata.

Examples:
  # Every augmentation
  suruext history

  # Augmentations of one page
  suruext history page.html

  # Augmentations of one SURU entry
  suruext history --suru-id SURU_7107788c441b76dfdb12e2eb7ab5a1a2

  # Re-render a stored report
  suruext history --id 5 --markdown

  # Every augmented target
  suruext history --list-targets

  # Lexemes created through "suruext serve"
  suruext history --creations`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-targets", "L", false,
		"List every augmented target")
	cmd.Flags().Bool("creations", false,
		"List lexemes created through the HTTP service")
	cmd.Flags().StringP("suru-id", "s", "",
		"Only show augmentations of this SURU id")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of rows (0 = all)")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the stored report with this id")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown")
	cmd.Flags().Bool("html", false,
		"Output HTML (stored reports only)")

	return cmd
}

// historyOptions are the parsed history flags.
type historyOptions struct {
	target      string
	listTargets bool
	creations   bool
	suruID      string
	limit       int
	id          int64
	format      *config.Config
}

func parseHistoryFlags(cmd *cobra.Command, args []string) (*historyOptions, error) {
	opts := &historyOptions{format: config.NewConfig()}
	if len(args) > 0 {
		opts.target = args[0]
	}

	var err error
	if opts.listTargets, err = cmd.Flags().GetBool("list-targets"); err != nil {
		return nil, err
	}
	if opts.creations, err = cmd.Flags().GetBool("creations"); err != nil {
		return nil, err
	}
	if opts.suruID, err = cmd.Flags().GetString("suru-id"); err != nil {
		return nil, err
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return nil, err
	}
	if opts.id, err = cmd.Flags().GetInt64("id"); err != nil {
		return nil, err
	}
	if opts.format.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if opts.format.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	html, err := cmd.Flags().GetBool("html")
	if err != nil {
		return nil, err
	}
	opts.format.TextReport = !html && !opts.format.JSONReport && !opts.format.MarkdownReport
	opts.format.Verbose = getVerboseFlag(cmd)

	if opts.format.JSONReport && opts.format.MarkdownReport {
		return nil, config.ErrConflictingReportFormats
	}
	if opts.listTargets && opts.creations {
		return nil, errors.New("--list-targets and --creations are mutually exclusive")
	}
	return opts, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd, args)
	if err != nil {
		return err
	}

	db, err := database.Open(opts.format.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (run 'suruext augment' first): %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), db, opts, cmd.OutOrStdout())
}

// runHistory writes the listing selected by opts.
func runHistory(ctx context.Context, db *database.ResultDB, opts *historyOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case opts.listTargets:
		return listTargets(ctx, db, out)
	case opts.creations:
		return listCreations(ctx, db, opts, out)
	case opts.id > 0:
		return showReport(ctx, db, opts, out)
	}

	metas, err := db.GetHistoryWithMetadata(ctx, database.Filter{
		Target: opts.target,
		SuruID: opts.suruID,
		Limit:  opts.limit,
	})
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if opts.format.TextReport {
		return historyTable(metas, out)
	}

	summaries := make([]*model.Summary, len(metas))
	for i, meta := range metas {
		summaries[i] = meta.Summary
	}
	_, err = newReportWriter(opts.format, out, nil).WriteSummaries(summaries)
	return err
}

// historyTable prints metadata with report ids so --id can be used.
func historyTable(metas []database.ReportMetadata, out io.Writer) error {
	if len(metas) == 0 {
		_, err := fmt.Fprintln(out, "No augmentations recorded.\n\nUse 'suruext augment' to augment a page.")
		return err
	}

	tbl := table.New("ID", "Date", "Target", "Headword", "Found", "Status").WithWriter(out)
	for _, m := range metas {
		found := "-"
		status := model.StatusNoData
		if m.Summary != nil {
			found = fmt.Sprintf("%d/%d", m.Summary.WordsFound, m.Summary.Words)
			if m.Summary.Status != "" {
				status = m.Summary.Status
			}
		}
		tbl.AddRow(m.ID, m.Timestamp.Format("2006-01-02 15:04:05"), m.Target, m.Headword, found, status)
	}
	tbl.Print()

	_, err := fmt.Fprintln(out, "\nUse 'suruext history --id <id>' to show a stored report.")
	return err
}

func listTargets(ctx context.Context, db *database.ResultDB, out io.Writer) error {
	targets, err := db.ListTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}
	if len(targets) == 0 {
		_, err := fmt.Fprintln(out, "No augmented targets found in the database.")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Augmented targets (%d):\n\n", len(targets))
	for _, t := range targets {
		fmt.Fprintf(&b, "  • %s\n", t)
	}
	_, err = io.WriteString(out, b.String())
	return err
}

func listCreations(ctx context.Context, db *database.ResultDB, opts *historyOptions, out io.Writer) error {
	creations, err := db.ListCreations(ctx, opts.target, opts.limit)
	if err != nil {
		return fmt.Errorf("failed to list creations: %w", err)
	}
	if len(creations) == 0 {
		_, err := fmt.Fprintln(out, "No lexemes created yet.")
		return err
	}

	tbl := table.New("Date", "Lexeme", "Lemma", "Category", "SURU id", "Sense", "Item", "New").WithWriter(out)
	for _, c := range creations {
		created := "no"
		if c.Created {
			created = "yes"
		}
		tbl.AddRow(c.Timestamp.Format("2006-01-02 15:04:05"), c.LexemeID, c.Lang+":"+c.Lemma, c.Category, c.SuruID, c.SenseID, c.SenseItem, created)
	}
	tbl.Print()
	return nil
}

func showReport(ctx context.Context, db *database.ResultDB, opts *historyOptions, out io.Writer) error {
	report, err := db.GetReportByID(ctx, opts.id)
	if err != nil {
		return fmt.Errorf("failed to get report %d: %w", opts.id, err)
	}
	if report == nil {
		return fmt.Errorf("no report with id %d", opts.id)
	}
	_, err = newReportWriter(opts.format, out, nil).Write(report)
	return err
}
