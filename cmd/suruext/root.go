package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for suruext.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suruext",
		Short: "Augment SURU dictionary pages with Wikidata lexemes",
		Long: `suruext augments SURU dictionary entry pages with Wikidata lexicographic data.

For an entry page it looks up the Finnish lexemes carrying the entry's SURU id
(P12682) and the Swedish nouns matching each translation on the page, and
renders them as an HTML table with links to the items, Wikipedia articles and
search pages. It also serves a small HTTP API that creates missing lexemes,
converts the SURU XML export to XLSX and matches word sheets against Wikidata.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAugmentCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewMatchCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
