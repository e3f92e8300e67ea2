package probe

import (
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 10 * time.Second

// Client issues HTTP requests against a target under test.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new probe client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:    slog.Default(),
		userAgent: "smokebench",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCookieJar attaches a cookie jar so that session cookies are replayed.
func WithCookieJar(jar http.CookieJar) ClientOption {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Timeout returns the configured per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Session returns a copy of c with its own empty cookie jar. Targets that
// keep state in an HTTP session (the cart) need one per run.
func (c *Client) Session() *Client {
	jar, _ := cookiejar.New(nil)
	hc := *c.httpClient
	hc.Jar = jar
	return &Client{
		httpClient: &hc,
		logger:     c.logger,
		userAgent:  c.userAgent,
	}
}
