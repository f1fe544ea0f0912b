package qsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quatton/qtripal/pkg/qsdk/qerr"
)

const (
	// APIPrefix is mounted under the site base URL by the tripal_api module.
	APIPrefix = "/tripal_api/"

	RequestIDHeader = "X-Request-ID"
	userAgent       = "qtripal"
	maxErrorBody    = 4 << 10
)

// Requester is the generic request collaborator: POST params to an API path
// and decode the JSON reply into out.
type Requester interface {
	Request(ctx context.Context, path string, params any, out any) error
}

// RequestEditorFn mutates an outgoing request before it is sent.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Client talks to the tripal_api endpoints of a single site.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	editors    []RequestEditorFn
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRequestEditorFn appends a request editor.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) {
		c.editors = append(c.editors, fn)
	}
}

// WithLogger sets the logger used for transport traffic.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// BasicAuth returns a request editor that sets HTTP basic credentials.
// An empty user leaves the request anonymous.
func BasicAuth(user, password string) RequestEditorFn {
	return func(_ context.Context, req *http.Request) error {
		if user != "" {
			req.SetBasicAuth(user, password)
		}
		return nil
	}
}

// NewClient returns a Client for the site at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "http")
	return c, nil
}

// Endpoint resolves an API path such as "job/add" to an absolute URL.
func (c *Client) Endpoint(path string) string {
	return c.baseURL.String() + APIPrefix + strings.TrimLeft(path, "/")
}

// Request POSTs params as JSON to the API path and decodes the reply into
// out. A nil out discards the body.
func (c *Client) Request(ctx context.Context, path string, params any, out any) error {
	var body io.Reader
	if params != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(params); err != nil {
			return qerr.New(qerr.CodeTransport, fmt.Errorf("encoding request for %s: %w", path, err))
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(path), body)
	if err != nil {
		return qerr.New(qerr.CodeTransport, fmt.Errorf("creating request for %s: %w", path, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := newRequestID()
	req.Header.Set(RequestIDHeader, requestID)

	for _, edit := range c.editors {
		if err := edit(ctx, req); err != nil {
			return err
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "path", path, "request_id", requestID, "error", err)
		return qerr.New(qerr.CodeTransport, fmt.Errorf("calling %s: %w", path, err))
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		"path", path,
		"request_id", requestID,
		"status", resp.StatusCode,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return qerr.New(qerr.CodeTransport, fmt.Errorf("decoding response from %s: %w", path, err))
	}
	return nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusError(path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := ""
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil {
		msg = er.Error
		if msg == "" {
			msg = er.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	code := qerr.CodeRemote
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		code = qerr.CodeUnauthorized
	}
	if msg == "" {
		return qerr.Errorf(code, "%s: status %d", path, resp.StatusCode)
	}
	return qerr.Errorf(code, "%s: status %d: %s", path, resp.StatusCode, msg)
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Ensure Client implements Requester.
var _ Requester = (*Client)(nil)
