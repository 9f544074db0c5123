package httpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/suruext/internal/config"
)

// maxRedirects caps redirect chains.
const maxRedirects = 10

// checkProxyTimeout bounds CheckProxy.
const checkProxyTimeout = 2 * time.Second

// Options configures a Client.
type Options struct {
	// Timeout applies to each request.
	Timeout time.Duration

	// UserAgent is set on requests that do not carry one.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy (host:port).
	ProxyAddress string

	// Sites supplies per-host cookies and headers. May be nil.
	Sites *config.File
}

// OptionsFromConfig copies the relevant settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Timeout:      cfg.Timeout,
		UserAgent:    cfg.UserAgent,
		ProxyAddress: cfg.ProxyAddress,
		Sites:        cfg.SiteConfigs,
	}
}

// Client builds configured HTTP clients.
type Client struct {
	opts   Options
	dialer proxy.ContextDialer
}

// NewClient validates opts. It does not contact the proxy; use CheckProxy
// for that.
func NewClient(opts Options) (*Client, error) {
	c := &Client{opts: opts}
	if opts.ProxyAddress == "" {
		return c, nil
	}

	if !isValidProxyAddress(opts.ProxyAddress) {
		return nil, ErrInvalidProxyAddress
	}
	d, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", opts.ProxyAddress)
	}
	c.dialer = cd
	return c, nil
}

// isValidProxyAddress accepts host:port with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy, or "".
func (c *Client) ProxyAddress() string {
	return c.opts.ProxyAddress
}

// HTTPClient returns a new client with its own cookie jar.
func (c *Client) HTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	if c.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = c.dialer.DialContext
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // only fails with invalid options

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: c.opts.UserAgent,
			sites:     c.opts.Sites,
		},
		Timeout: c.opts.Timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// CheckProxy performs the SOCKS5 greeting against the proxy. It returns nil
// when no proxy is configured.
func (c *Client) CheckProxy(ctx context.Context) error {
	if c.opts.ProxyAddress == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.opts.ProxyAddress)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}

	// version 5, one method, "no authentication"
	if _, err := conn.Write([]byte{0x05, 0x01, 0x00}); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}
	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyNotSOCKS5, err)
	}
	if resp[0] != 0x05 || resp[1] != 0x00 {
		return ErrProxyNotSOCKS5
	}
	return nil
}

// headerInjectingTransport adds the User-Agent and the per-host cookie and
// headers to every request, redirects included.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	sites     *config.File
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}

	if t.sites != nil {
		site := t.sites.GetSiteConfig(clone.URL.Hostname())
		if site.Cookie != "" {
			if existing := clone.Header.Get("Cookie"); existing != "" {
				clone.Header.Set("Cookie", existing+"; "+site.Cookie)
			} else {
				clone.Header.Set("Cookie", site.Cookie)
			}
		}
		for k, v := range site.Headers {
			clone.Header.Set(k, v)
		}
	}

	return t.base.RoundTrip(clone)
}
