package pixdex

import (
	"net/http"
	"time"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// WithHTTPClient sets a custom HTTP client. Overrides WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// SearchOption configures a single Search call.
type SearchOption interface {
	applySearch(*searchConfig)
}

type searchOptionFunc func(*searchConfig)

func (f searchOptionFunc) applySearch(c *searchConfig) { f(c) }

type searchConfig struct {
	k        int
	filename string
}

// WithK requests the top k matches. Zero means the server default.
func WithK(k int) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		c.k = k
	})
}

// WithFilename sets the multipart filename sent with the upload.
// Cosmetic only; the server ignores it.
func WithFilename(name string) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		c.filename = name
	})
}
