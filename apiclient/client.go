// Package apiclient wraps outbound requests to one backend service with
// bearer-token attachment and a single refresh-and-retry on 401. Each
// backend (user, project, task, chat) gets its own Client pointed at a
// different base URL; the refresh call itself always goes to the user
// service, whichever client tripped the 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/starack/admin-console/internal/errors"
	"github.com/starack/admin-console/token"
)

// Auth endpoint suffixes exempt from the refresh protocol. A 401 from either
// must propagate untouched, never trigger a refresh-of-a-refresh.
const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
)

// Client issues JSON requests against a single backend base URL.
type Client struct {
	baseURL        string
	refreshURL     string
	httpClient     *http.Client
	tokens         token.Repo
	onForcedLogout func()
	logger         zerolog.Logger
}

// Option modifies a Client at construction time.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithForcedLogoutHandler registers the redirect side effect run when
// recovery is abandoned: no refresh token stored, or the refresh call
// itself rejected. The handler navigates to the login route.
func WithForcedLogoutHandler(fn func()) Option {
	return func(c *Client) {
		c.onForcedLogout = fn
	}
}

// New creates a Client for one backend service. userServiceURL is the base
// URL of the user service, the single source of truth for identity.
func New(baseURL, userServiceURL string, tokens token.Repo, options ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		refreshURL:     strings.TrimRight(userServiceURL, "/") + refreshPath,
		httpClient:     http.DefaultClient,
		tokens:         tokens,
		onForcedLogout: func() {},
		logger:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// request describes one logical outbound call. The retried marker is
// one-shot: it guarantees at most one refresh-triggered resubmission per
// request, so a 401 on the retry is a terminal failure rather than the
// start of another refresh cycle.
type request struct {
	id      string
	method  string
	path    string
	query   url.Values
	body    []byte
	retried bool
}

// Get issues a GET request and decodes a 2xx JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one logical request: attach the stored bearer token, send, and on
// a 401 from a non-auth endpoint refresh the access token once and resubmit.
// The caller sees the resubmitted response as if the first attempt had
// succeeded with extra latency.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req := &request{
		id:     uuid.New().String(),
		method: method,
		path:   path,
		query:  query,
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.Do] marshal request body")
		}
		req.body = data
	}

	status, respBody, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && c.canRecover(req) {
		return c.recover(ctx, req, out, backendError(status, respBody))
	}
	if status < 200 || status > 299 {
		return backendError(status, respBody)
	}
	return decode(respBody, out)
}

// canRecover evaluates the guards from the refresh protocol: the failing
// request must not itself be a login or refresh call, and must not have
// been retried already.
func (c *Client) canRecover(req *request) bool {
	if req.retried {
		return false
	}
	if strings.Contains(req.path, loginPath) || strings.Contains(req.path, refreshPath) {
		return false
	}
	return true
}

// recover runs the refresh-and-retry protocol. originalErr is propagated
// when there is no refresh token to recover with; a failed refresh call
// propagates the refresh error instead, after clearing the stored pair and
// running the forced-logout redirect.
func (c *Client) recover(ctx context.Context, req *request, out any, originalErr error) error {
	refreshToken, ok := c.tokens.RefreshToken()
	if !ok {
		c.forceLogout(req, "no refresh token stored")
		return originalErr
	}

	accessToken, err := c.refresh(ctx, refreshToken)
	if err != nil {
		c.forceLogout(req, "refresh rejected")
		return apperrors.Wrapf(apperrors.ErrRefreshFailed, "[Client.recover] %v", err)
	}

	if err := c.tokens.SetAccessToken(accessToken); err != nil {
		return errors.Wrap(err, "[Client.recover] persist refreshed access token")
	}

	c.logger.Debug().Str("request_id", req.id).Str("path", req.path).Msg("access token refreshed, retrying request")

	req.retried = true
	status, respBody, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return backendError(status, respBody)
	}
	return decode(respBody, out)
}

// refresh exchanges the refresh token for a new access token at the user
// service. The call is sent through the bare HTTP client: no bearer header,
// no interception.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", errors.Wrap(err, "[Client.refresh] marshal payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "[Client.refresh] build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "[Client.refresh] send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "[Client.refresh] read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", backendError(resp.StatusCode, respBody)
	}

	var tokenResp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return "", errors.Wrap(err, "[Client.refresh] decode response")
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("[Client.refresh] empty access token in response")
	}
	return tokenResp.AccessToken, nil
}

func (c *Client) forceLogout(req *request, reason string) {
	c.logger.Warn().Str("request_id", req.id).Str("path", req.path).Str("reason", reason).Msg("abandoning recovery, forcing logout")
	if err := c.tokens.Clear(); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear stored tokens")
	}
	c.onForcedLogout()
}

// send performs one HTTP round trip, reading the stored access token fresh
// each time so a retry picks up the token written by the refresh.
func (c *Client) send(ctx context.Context, req *request) (int, []byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		bodyReader = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bodyReader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Client.send] build request")
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if accessToken, ok := c.tokens.AccessToken(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "[Client.send] %s %s", req.method, req.path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Client.send] read response")
	}
	return resp.StatusCode, respBody, nil
}

func decode(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "[Client] decode response body")
	}
	return nil
}

// backendError builds a BackendError from a non-2xx response, pulling the
// message out of a {"message": ...} body when one is present.
func backendError(status int, body []byte) error {
	var errResp struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &errResp)
	return &apperrors.BackendError{StatusCode: status, Message: errResp.Message}
}
