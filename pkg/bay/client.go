package bay

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/bayfiles/bay_sdk_go/internal/httpx"
	"github.com/bayfiles/bay_sdk_go/internal/metrics"
)

// DefaultBaseURL is the Bayfiles API v1 endpoint.
const DefaultBaseURL = "http://api.bayfiles.com/v1"

// RetryPolicy configures transport-level retries. The default sends every
// request exactly once.
type RetryPolicy = httpx.RetryPolicy

// Client is the entry point to the API. It owns the transport and the
// ambient logger and metrics, and creates Accounts, Files and Uploaders bound
// to it. A Client is safe for concurrent use.
type Client struct {
	baseURL   string
	transport Transport
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type options struct {
	httpOpts   []httpx.Option
	logger     *zap.Logger
	registerer prometheus.Registerer
	fs         afero.Fs
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient overrides the *http.Client used by the HTTP transport.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, httpx.WithHTTPClient(h))
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, httpx.WithTimeout(d))
	}
}

// WithRetryPolicy enables transport-level retries.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, httpx.WithRetryPolicy(p))
	}
}

// WithHeaders adds default headers to every HTTP request.
func WithHeaders(h http.Header) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, httpx.WithHeaders(h))
	}
}

// WithLogger sets the logger used for per-request debug entries.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics registers request metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithFs sets the filesystem upload attachments are read from.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// New constructs an HTTP-backed client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := collect(opts)
	hc, err := httpx.NewClient(baseURL, o.httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("bay: %w", err)
	}
	return newClient(hc.BaseURL(), &httpTransport{client: hc, fs: o.fs}, o)
}

// NewWithTransport allows callers to provide a custom transport (e.g. fakes
// in tests). HTTP-specific options are ignored.
func NewWithTransport(baseURL string, t Transport, opts ...Option) (*Client, error) {
	if t == nil {
		return nil, fmt.Errorf("bay: transport is nil")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("bay: base URL is required")
	}
	return newClient(strings.TrimRight(baseURL, "/"), t, collect(opts))
}

func collect(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	return o
}

func newClient(baseURL string, t Transport, o *options) (*Client, error) {
	var m *metrics.Metrics
	if o.registerer != nil {
		var err error
		if m, err = metrics.New(o.registerer, "client"); err != nil {
			return nil, fmt.Errorf("bay: register metrics: %w", err)
		}
	}
	return &Client{
		baseURL:   baseURL,
		transport: t,
		logger:    o.logger,
		metrics:   m,
	}, nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}
