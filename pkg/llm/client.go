package llm

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/papercomputeco/frontier/pkg/logger"
	"github.com/papercomputeco/frontier/pkg/utils"
)

// ClientConfig is the explicit per-adapter configuration handed to a backend
// adapter when it is created.
type ClientConfig struct {
	// APIKey authenticates against the backend. Local backends ignore it.
	APIKey string

	// BaseURL overrides the backend's default endpoint.
	BaseURL string

	// HTTPClient is used for every upstream request. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger receives debug output about upstream requests.
	Logger *slog.Logger

	// Raw, when set, receives a verbatim copy of the upstream byte stream.
	Raw io.Writer
}

// Client returns the configured HTTP client or http.DefaultClient.
func (c ClientConfig) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// TeeClient returns the configured client. When Raw is set, every response
// body is also copied to Raw as it is read, which lets adapters built on an
// SDK that owns the body honour the raw dump.
func (c ClientConfig) TeeClient() *http.Client {
	base := c.Client()
	if c.Raw == nil {
		return base
	}
	tee := *base
	tee.Transport = teeTransport{base: base.Transport, dest: c.Raw}
	return &tee
}

type teeTransport struct {
	base http.RoundTripper
	dest io.Writer
}

func (t teeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = teeBody{Reader: io.TeeReader(resp.Body, t.dest), Closer: resp.Body}
	return resp, nil
}

type teeBody struct {
	io.Reader
	io.Closer
}

// Do sends req with the configured client, identifying frontier in the
// User-Agent header unless the caller set one.
func (c ClientConfig) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", utils.UserAgent())
	}
	return c.Client().Do(req)
}

// Log returns the configured logger or a no-op logger.
func (c ClientConfig) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.Nop()
}

// RawWriter returns the raw dump writer or io.Discard.
func (c ClientConfig) RawWriter() io.Writer {
	if c.Raw != nil {
		return c.Raw
	}
	return io.Discard
}

// URL joins the configured base URL, or fallback when unset, with path.
func (c ClientConfig) URL(fallback, path string) string {
	base := c.BaseURL
	if base == "" {
		base = fallback
	}
	return strings.TrimRight(base, "/") + path
}

// StatusError builds an error from a non-2xx upstream response, including a
// truncated copy of its body.
func StatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := utils.OneLine(string(body))
	if msg == "" {
		return fmt.Errorf("upstream returned %s", resp.Status)
	}
	return fmt.Errorf("upstream returned %s: %s", resp.Status, utils.Truncate(msg, 512))
}
