package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/suruext/internal/suruxml"
)

// defaultConvertOutput is written when --output is not given.
const defaultConvertOutput = "suru_entries.xlsx"

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <xml-file-or-dir>",
		Short: "Convert SURU XML dictionary entries to XLSX",
		Long: `Convert reads SURU DictionaryEntry XML documents and writes one XLSX
row per entry with the columns:
  suru_id, headword, subcategorisation, ks, seealso, translations, sense_groups

Given a directory, every *.xml file in it is read. Files that fail to
parse are reported and skipped.

Examples:
  suruext convert ./suru-xml -o entries.xlsx
  suruext convert entry.xml --json`,
		Args: cobra.ExactArgs(1),
		RunE: runConvertCmd,
	}

	cmd.Flags().StringP("output", "o", defaultConvertOutput,
		"XLSX file to write")
	cmd.Flags().BoolP("json", "j", false,
		"Print the statistics as JSON")

	return cmd
}

// runConvertCmd executes the convert command.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	logger := setupLogger(getVerboseFlag(cmd))

	entries, err := readEntries(args[0])
	if err != nil {
		if len(entries) == 0 {
			return err
		}
		logger.Warn("some files could not be parsed", "error", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no dictionary entries found in %s", args[0])
	}

	if dir := filepath.Dir(output); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := suruxml.WriteXLSX(output, entries); err != nil {
		return err
	}
	logger.Info("entries written", "file", output, "entries", len(entries))

	stats := suruxml.Stats(entries)
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(out, "Wrote %d entries to %s\n\n", stats.Entries, output)
	tbl := table.New("Part", "Entries").WithWriter(out)
	tbl.AddRow("ks", stats.WithKS)
	tbl.AddRow("seealso", stats.WithSeeAlso)
	tbl.AddRow("translations", stats.WithTrans)
	tbl.AddRow("sense groups", stats.WithSenseGrp)
	tbl.Print()
	return nil
}

// readEntries parses path as a directory of XML files or a single file.
func readEntries(path string) ([]suruxml.Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("input not found: %s", path)
		}
		return nil, err
	}
	if info.IsDir() {
		return suruxml.ParseDir(path)
	}
	return suruxml.ParseFile(path)
}
