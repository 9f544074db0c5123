package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/suruext/internal/config"
	"github.com/nao1215/suruext/internal/database"
	"github.com/nao1215/suruext/internal/lexeme"
	"github.com/nao1215/suruext/internal/log"
	"github.com/nao1215/suruext/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lexeme creator HTTP service",
		Long: `Serve runs the HTTP service linked from augmented pages.

GET /add creates (or reuses) a Wikidata lexeme for a SURU headword, adds
the SURU id (P12682) and optionally a Swedish sense pointing to an item.
GET /augment?url=... returns the augmentation fragment for a page.

The bot login is read from the environment, optionally loaded from an
env file:
  SURUEXT_WIKIDATA_USERNAME=User@bot
  SURUEXT_WIKIDATA_PASSWORD=...

Examples:
  # Listen on the default address (127.0.0.1:5001)
  suruext serve

  # Listen on all interfaces, without the history database
  suruext serve --listen :5001 --no-save`,
		RunE: runServeCmd,
	}

	addServiceFlags(cmd)
	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to listen on")
	cmd.Flags().String("env-file", config.DefaultEnvFile,
		"File with the bot login (ignored when missing)")
	cmd.Flags().Bool("no-augment", false,
		"Disable the /augment endpoint")
	cmd.Flags().Bool("no-save", false,
		"Do not record creations and reports in the history database")

	return cmd
}

// serveOptions are the serve flags beyond the shared service flags.
type serveOptions struct {
	envFile   string
	noAugment bool
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := applyServiceFlags(cmd, cfg); err != nil {
		return err
	}

	var err error
	if cmd.Flags().Changed("listen") {
		if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
			return err
		}
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noSave

	var opts serveOptions
	if opts.envFile, err = cmd.Flags().GetString("env-file"); err != nil {
		return err
	}
	if opts.noAugment, err = cmd.Flags().GetBool("no-augment"); err != nil {
		return err
	}

	if err := cfg.ValidateService(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Credentials, err = config.LoadCredentials(opts.envFile); err != nil {
		return err
	}

	logger := log.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	return runServe(ctx, cfg, opts, logger)
}

// runServe builds the service and blocks until ctx is cancelled.
func runServe(ctx context.Context, cfg *config.Config, opts serveOptions, logger *slog.Logger) error {
	if cfg.Credentials.Empty() {
		logger.Warn("no bot login configured, /add will fail",
			"username_env", config.EnvUsername, "password_env", config.EnvPassword)
	}

	svc, err := newServices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	creator := lexeme.NewCreator(svc.action, svc.sparql, cfg.Credentials,
		lexeme.WithLogger(log.Component(logger, "creator")),
		lexeme.WithWikidataURL(cfg.WikidataURL),
	)

	serverOpts := []server.Option{
		server.WithLogger(log.Component(logger, "server")),
		server.WithRenderer(svc.renderer),
		server.WithBaseURL(baseURL(cfg.ListenAddress)),
	}
	if !opts.noAugment {
		serverOpts = append(serverOpts, server.WithAugmenter(svc.runner(cfg, logger)))
	}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		serverOpts = append(serverOpts, server.WithStore(db))
	}

	return server.New(creator, serverOpts...).ListenAndServe(ctx, cfg.ListenAddress)
}

// baseURL turns a listen address into the URL shown in the usage document.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
