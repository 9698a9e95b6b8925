// Package httpclient wraps outbound calls to the platform backend: it
// attaches authorization headers from the session store, normalizes failure
// responses into typed errors, and recovers from a 401 by performing a
// single refresh-and-retry through the injected Refresher.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/session"
)

// DefaultTimeout is the fixed per-request budget. A timeout is treated like
// any other network failure: it never triggers the refresh protocol.
const DefaultTimeout = 10 * time.Second

const (
	defaultLoginPath   = "/auth/login"
	defaultRefreshPath = "/auth/refresh"
)

// Refresher performs the token refresh protocol. The auth service implements
// it; the client only knows that after a nil return the store holds fresh
// tokens, and after an error the store has been reset.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Client performs JSON requests against the backend base URL, uniformly
// authenticated and uniformly erroring.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	store       *session.Store
	transforms  []RequestTransform
	refresher   Refresher
	loginPath   string
	refreshPath string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying *http.Client (primarily for tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTransforms appends request transforms after the default auth-header
// and request-ID stages.
func WithTransforms(transforms ...RequestTransform) ClientOption {
	return func(c *Client) {
		c.transforms = append(c.transforms, transforms...)
	}
}

// WithAuthPaths overrides the login and refresh endpoint paths. A 401 from
// either is terminal for that call: the login endpoint means the credentials
// were wrong, and the refresh endpoint means the refresh token is dead.
func WithAuthPaths(loginPath, refreshPath string) ClientOption {
	return func(c *Client) {
		c.loginPath = loginPath
		c.refreshPath = refreshPath
	}
}

// New creates a client for the given base URL reading auth state from store.
func New(baseURL string, store *session.Store, options ...ClientOption) (*Client, error) {
	if store == nil {
		return nil, errors.New("[httpclient.New] store is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "[httpclient.New] invalid base URL %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[httpclient.New] base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:     u,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		store:       store,
		loginPath:   defaultLoginPath,
		refreshPath: defaultRefreshPath,
	}
	c.transforms = []RequestTransform{
		AuthHeaderTransform(store),
		RequestIDTransform(),
	}

	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// SetRefresher wires the refresh protocol in. Called once during assembly;
// the auth service needs the client to talk to the refresh endpoint, so the
// dependency cannot be passed at construction time.
func (c *Client) SetRefresher(r Refresher) {
	c.refresher = r
}

// pendingRequest carries the original configuration of an in-flight call so
// it can be replayed exactly once after a token refresh.
type pendingRequest struct {
	method  string
	path    string
	query   url.Values
	body    []byte
	retried bool
}

// Get issues a GET request. query may be nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, &pendingRequest{method: http.MethodGet, path: path, query: query}, out)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doWithBody(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doWithBody(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doWithBody(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, &pendingRequest{method: http.MethodDelete, path: path}, out)
}

func (c *Client) doWithBody(ctx context.Context, method, path string, body, out any) error {
	pr := &pendingRequest{method: method, path: path}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client.%s] marshal request body", method)
		}
		pr.body = data
	}
	return c.do(ctx, pr, out)
}

// do sends the request, runs the 401 refresh-and-retry stage and the error
// normalization stage, and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, pr *pendingRequest, out any) error {
	status, respBody, err := c.send(ctx, pr)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("request failed: %v", err)}
	}

	if status == http.StatusUnauthorized && !c.authPath(pr.path) && !pr.retried {
		pr.retried = true
		if err := c.refresh(ctx); err != nil {
			return err
		}

		log.Debug().Str("path", pr.path).Msg("httpclient: retrying request after token refresh")
		status, respBody, err = c.send(ctx, pr)
		if err != nil {
			return &RequestError{Message: fmt.Sprintf("request failed: %v", err)}
		}
	}

	if status < 200 || status > 299 {
		return &RequestError{StatusCode: status, Message: messageFromBody(respBody, status)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrapf(err, "[Client.do] decode response from %s", pr.path)
		}
	}
	return nil
}

// refresh invokes the refresh protocol. A missing refresher is equivalent to
// a missing refresh token: fail closed as logged out.
func (c *Client) refresh(ctx context.Context) error {
	if c.refresher == nil {
		c.store.ResetSession()
		return session.ErrRefreshUnavailable
	}
	return c.refresher.Refresh(ctx)
}

// send builds a fresh *http.Request from the pending request (so a replay
// re-reads the body and re-runs every transform) and performs it.
func (c *Client) send(ctx context.Context, pr *pendingRequest) (int, []byte, error) {
	u := c.resolve(pr.path)
	if pr.query != nil {
		u.RawQuery = pr.query.Encode()
	}

	var bodyReader io.Reader
	if pr.body != nil {
		bodyReader = bytes.NewReader(pr.body)
	}

	req, err := http.NewRequestWithContext(ctx, pr.method, u.String(), bodyReader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "build request")
	}
	if pr.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	for _, transform := range c.transforms {
		if err := transform(req); err != nil {
			return 0, nil, errors.Wrap(err, "request transform")
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "read response body")
	}
	return resp.StatusCode, respBody, nil
}

// authPath reports whether path is the login or refresh endpoint, whose 401
// responses must never trigger the refresh protocol.
func (c *Client) authPath(path string) bool {
	trimmed := strings.TrimSuffix(path, "/")
	return trimmed == c.loginPath || trimmed == c.refreshPath
}

func (c *Client) resolve(path string) *url.URL {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	base := *c.baseURL
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref)
}
