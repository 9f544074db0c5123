package config

import (
	"net"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is used for XDG paths and the User-Agent.
	AppName = "suruext"

	// DefaultSPARQLEndpoint is the Wikidata Query Service.
	DefaultSPARQLEndpoint = "https://query.wikidata.org/sparql"

	// DefaultEntityDataURL serves Special:EntityData/<Q>.json documents.
	DefaultEntityDataURL = "https://www.wikidata.org/wiki/Special:EntityData"

	// DefaultActionAPIURL is the MediaWiki action API used for searching and
	// editing.
	DefaultActionAPIURL = "https://www.wikidata.org/w/api.php"

	// DefaultWikidataURL is the base for entity and search links.
	DefaultWikidataURL = "https://www.wikidata.org"

	// DefaultCreatorURL is the lexeme creation endpoint served by
	// "suruext serve" and linked from the rendered fragment.
	DefaultCreatorURL = "http://localhost:5001/add"

	// DefaultListenAddress matches DefaultCreatorURL.
	DefaultListenAddress = "127.0.0.1:5001"

	// DefaultTimeout bounds a single HTTP request. The query service can take
	// several seconds on lexeme joins.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of pages augmented concurrently.
	DefaultBatchSize = 4

	// DefaultConcurrency of 0 sends every per-word query at once.
	DefaultConcurrency = 0

	// DefaultMaxBodySize caps page and API response bodies.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent is sent on every request. Wikimedia rejects requests
	// without a descriptive agent.
	DefaultUserAgent = "suruext/1.0 (+https://github.com/nao1215/suruext)"
)

// Config holds the options of one suruext invocation. It is built from
// defaults, the config file and CLI flags, then passed down explicitly.
type Config struct {
	// SPARQLEndpoint is the SPARQL query endpoint.
	SPARQLEndpoint string

	// EntityDataURL is the prefix of entity JSON documents; "/<Q>.json" is
	// appended.
	EntityDataURL string

	// ActionAPIURL is the api.php endpoint.
	ActionAPIURL string

	// WikidataURL is the site used when building links in the output.
	WikidataURL string

	// CreatorURL is the lexeme creation endpoint linked when a SURU id has no
	// lexeme yet.
	CreatorURL string

	// ListenAddress is where "suruext serve" listens.
	ListenAddress string

	// Timeout applies to each HTTP request.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize caps how many bytes of a response are read. 0 selects
	// DefaultMaxBodySize.
	MaxBodySize int64

	// Concurrency limits the per-word lookups in flight for one page.
	// 0 means no limit.
	Concurrency int

	// BatchSize is the number of pages augmented at the same time.
	BatchSize int

	// ProxyAddress is an optional SOCKS5 proxy in host:port form.
	ProxyAddress string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit .suruext path. Empty means search the
	// current and home directories.
	ConfigFilePath string

	// SiteConfigs holds the parsed config file, if any.
	SiteConfigs *File

	// SuruID overrides the id derived from the page URL.
	SuruID string

	// Targets are page URLs or local HTML files to augment.
	Targets []string

	// JSONReport, MarkdownReport and TextReport select the output format.
	// With none set the HTML fragment is written. They are mutually
	// exclusive.
	JSONReport     bool
	MarkdownReport bool
	TextReport     bool

	// Inject writes the whole page with the fragment inserted instead of the
	// fragment alone. Only meaningful for HTML output.
	Inject bool

	// ReportFile is the output path. Empty means stdout.
	ReportFile string

	// DBDir is where the history database lives.
	DBDir string

	// SaveToDB records pages and reports in the history database.
	SaveToDB bool

	// Credentials are the bot login used by the lexeme creator.
	Credentials Credentials
}

// NewConfig returns a Config filled with defaults.
func NewConfig() *Config {
	return &Config{
		SPARQLEndpoint: DefaultSPARQLEndpoint,
		EntityDataURL:  DefaultEntityDataURL,
		ActionAPIURL:   DefaultActionAPIURL,
		WikidataURL:    DefaultWikidataURL,
		CreatorURL:     DefaultCreatorURL,
		ListenAddress:  DefaultListenAddress,
		Timeout:        DefaultTimeout,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		Concurrency:    DefaultConcurrency,
		BatchSize:      DefaultBatchSize,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the data directory holding the history database
// (~/.local/share/suruext on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns ~/.config/suruext on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile copies the non-empty settings of cf over c and keeps cf for
// per-site lookups.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}
	c.SiteConfigs = cf

	if cf.Endpoints.SPARQL != "" {
		c.SPARQLEndpoint = cf.Endpoints.SPARQL
	}
	if cf.Endpoints.EntityData != "" {
		c.EntityDataURL = cf.Endpoints.EntityData
	}
	if cf.Endpoints.ActionAPI != "" {
		c.ActionAPIURL = cf.Endpoints.ActionAPI
	}
	if cf.Endpoints.Wikidata != "" {
		c.WikidataURL = cf.Endpoints.Wikidata
	}
	if cf.Endpoints.Creator != "" {
		c.CreatorURL = cf.Endpoints.Creator
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.Concurrency > 0 {
		c.Concurrency = cf.Concurrency
	}
	if cf.Proxy != "" {
		c.ProxyAddress = cf.Proxy
	}
}

// Validate checks an augment run: at least one target plus everything
// ValidateService checks.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.SuruID != "" && len(c.Targets) > 1 {
		return ErrSuruIDWithManyTargets
	}
	if countTrue(c.JSONReport, c.MarkdownReport, c.TextReport) > 1 {
		return ErrConflictingReportFormats
	}
	if c.Inject && (c.JSONReport || c.MarkdownReport || c.TextReport) {
		return ErrInjectNeedsHTML
	}
	return c.ValidateService()
}

// ValidateService checks the settings needed to talk to Wikidata.
func (c *Config) ValidateService() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	for _, endpoint := range []string{c.SPARQLEndpoint, c.EntityDataURL, c.ActionAPIURL} {
		if !isHTTPURL(endpoint) {
			return ErrInvalidEndpoint
		}
	}
	if c.ProxyAddress != "" {
		if _, _, err := net.SplitHostPort(c.ProxyAddress); err != nil {
			return ErrInvalidProxyAddress
		}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
