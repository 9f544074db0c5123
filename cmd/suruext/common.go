package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/suruext/internal/config"
	"github.com/nao1215/suruext/internal/httpclient"
	"github.com/nao1215/suruext/internal/log"
	"github.com/nao1215/suruext/internal/pipeline"
	"github.com/nao1215/suruext/internal/render"
	"github.com/nao1215/suruext/internal/scraper"
	"github.com/nao1215/suruext/internal/wikidata"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger returns the masking logger writing to stderr.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// addServiceFlags registers the flags shared by commands talking to
// Wikidata.
func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .suruext in current or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().String("sparql", "",
		"SPARQL endpoint (default: "+config.DefaultSPARQLEndpoint+")")
}

// applyServiceFlags loads the config file and applies the shared flags.
// Flags set on the command line win over the file.
func applyServiceFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	cfg.Verbose = getVerboseFlag(cmd)

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := loadConfigFile(cfg); err != nil {
		return err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("proxy") {
		if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
			return err
		}
	}
	if sparql, err := cmd.Flags().GetString("sparql"); err != nil {
		return err
	} else if sparql != "" {
		cfg.SPARQLEndpoint = sparql
	}
	return nil
}

// loadConfigFile applies the configuration file. An explicit path that
// does not exist is an error; a missing default file is not.
func loadConfigFile(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case path != "":
		cf, err := config.LoadConfigFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(cf)
	case explicit:
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}
	return nil
}

// services are the Wikidata clients of one run, sharing one HTTP client.
type services struct {
	http     *http.Client
	sparql   *wikidata.SPARQLClient
	lexemes  *wikidata.Client
	entities *wikidata.EntityClient
	action   *wikidata.ActionClient
	fetcher  *scraper.Fetcher
	renderer *render.HTMLRenderer
}

// newServices builds the clients described by cfg and checks the proxy.
func newServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services, error) {
	hc, err := httpclient.NewClient(httpclient.OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	if err := hc.CheckProxy(ctx); err != nil {
		return nil, fmt.Errorf("proxy check failed: %w (make sure the proxy is running at %s)", err, cfg.ProxyAddress)
	}

	client := hc.HTTPClient()
	sparql := wikidata.NewSPARQLClient(client, cfg.SPARQLEndpoint, log.Component(logger, "sparql"))
	return &services{
		http:     client,
		sparql:   sparql,
		lexemes:  wikidata.NewClient(sparql, log.Component(logger, "lexemes")),
		entities: wikidata.NewEntityClient(client, cfg.EntityDataURL, log.Component(logger, "entitydata")),
		action:   wikidata.NewActionClient(client, cfg.ActionAPIURL, log.Component(logger, "action")),
		fetcher:  scraper.NewFetcher(client, scraper.WithMaxBodySize(cfg.MaxBodySize)),
		renderer: render.NewHTMLRenderer(render.Links{WikidataURL: cfg.WikidataURL, CreatorURL: cfg.CreatorURL}),
	}, nil
}

// runner returns the page augmenter configured by cfg.
func (s *services) runner(cfg *config.Config, logger *slog.Logger) *pipeline.Runner {
	return &pipeline.Runner{
		Services: pipeline.Services{
			Fetcher:      s.fetcher,
			Suru:         s.lexemes,
			Translations: s.lexemes,
			Sitelinks:    s.entities,
			Renderer:     s.renderer,
		},
		Options:     []pipeline.Option{pipeline.WithLogger(log.Component(logger, "pipeline"))},
		Concurrency: cfg.Concurrency,
		Inject:      cfg.Inject,
	}
}

// nopCloser keeps stdout open.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns path, created with its directories, or stdout when
// path is empty.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user supplied output path
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// newReportWriter selects the writer for the report format flags.
func newReportWriter(cfg *config.Config, out io.Writer, renderer *render.HTMLRenderer) render.Writer {
	switch {
	case cfg.JSONReport:
		return render.NewJSONWriter(out, render.WithPrettyPrint(), render.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return render.NewMarkdownWriter(out)
	case cfg.TextReport:
		return render.NewTextWriter(out, render.WithVerbose(cfg.Verbose))
	default:
		return render.NewHTMLWriter(out, renderer)
	}
}
