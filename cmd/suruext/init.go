package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/suruext/internal/config"
)

//go:embed templates/suruext.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new suruext configuration file",
		Long: `Initialize creates a new .suruext configuration file in the current directory.

The generated file includes:
- The Wikidata endpoints and the lexeme creator URL
- Request settings shared by every dictionary site
- Commented examples for site-specific cookies and headers

Examples:
  # Create .suruext in current directory
  suruext init

  # Create config file at a specific path
  suruext init -o myconfig.yaml

  # Force overwrite existing file
  suruext init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/suruext.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - Wikidata endpoints and the User-Agent")
	fmt.Fprintln(out, "  - Cookies and headers for dictionary sites")
	fmt.Fprintln(out, "\nThe bot login for 'suruext serve' is read from the environment,")
	fmt.Fprintf(out, "not from this file (%s, %s).\n", config.EnvUsername, config.EnvPassword)

	return nil
}
