package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"lexmail/internal/common"
	"lexmail/internal/logging"
)

const (
	loginPath    = "/api/auth/login/"
	registerPath = "/api/auth/register/"
	refreshPath  = "/api/auth/refresh/"
	profilePath  = "/api/users/profile/"
	deletePath   = "/api/users/delete/"
	myKeysPath   = "/api/mail/pgp-keys/my_keys/"
)

// HTTPClient talks JSON to the portal. One instance is shared by every
// component; its installed TokenStore is the "default credential header"
// of the transport configuration.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	mu     sync.RWMutex
	tokens TokenStore

	// onAuthFailure runs session teardown. Installed by the composition
	// root after the auth service exists; must be idempotent.
	onAuthFailure func(context.Context)

	// Concurrent 401s join one in-flight refresh exchange instead of each
	// spending the refresh token on its own.
	refreshGroup singleflight.Group
}

func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	if log == nil {
		log = logging.Discard()
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// SetAuthFailureHandler installs the teardown hook invoked when a refresh
// exchange is rejected.
func (c *HTTPClient) SetAuthFailureHandler(fn func(context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthFailure = fn
}

// UseTokens installs the credential source for subsequent requests.
func (c *HTTPClient) UseTokens(tokens TokenStore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

// ClearAuthorization removes the credential source. Requests sent afterwards
// carry no Authorization header until UseTokens runs again.
func (c *HTTPClient) ClearAuthorization() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = nil
}

func (c *HTTPClient) currentTokens() TokenStore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// bearer returns the access token to attach, read fresh from the credential
// store at send time. Empty when logged out or cleared.
func (c *HTTPClient) bearer() string {
	ts := c.currentTokens()
	if ts == nil {
		return ""
	}
	return ts.AccessToken()
}

func (c *HTTPClient) failAuth(ctx context.Context) {
	c.mu.RLock()
	fn := c.onAuthFailure
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

// send issues one request and applies the retry-on-401 policy: at most one
// replay, and only after a refresh. The body is kept as bytes so the replay
// can reuse it. A 401 on the replayed request propagates as-is.
func (c *HTTPClient) send(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	retried := false
	for {
		token := c.bearer()
		status, data, err := c.roundTrip(ctx, method, path, body, contentType, token)
		if err != nil {
			return err
		}

		if status == http.StatusUnauthorized && !retried {
			retried = true
			if current := c.bearer(); current != "" && current != token {
				// A sibling request already refreshed; replay with the
				// rotated token instead of exchanging again.
				continue
			}
			if err := c.Refresh(ctx); err != nil {
				// Surface the refresh failure, not the original 401.
				return err
			}
			continue
		}

		if status >= 400 {
			return &APIError{StatusCode: status, Payload: data}
		}

		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to decode response from %s: %w", path, err)
			}
		}
		return nil
	}
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, body []byte, contentType, token string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	c.log.Debug(ctx, "portal request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Err: err}
	}

	c.log.Debug(ctx, "portal response", "status", resp.StatusCode, "path", path, "request_id", requestID)
	return resp.StatusCode, data, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}
	return c.send(ctx, http.MethodPost, path, body, "application/json", out)
}

// Refresh is the refresh coordinator. Without a refresh token it returns
// immediately and never touches the network. Otherwise it exchanges the
// refresh token for a new access token, visible to every request dispatched
// after it returns. Concurrent callers share one exchange. A rejected
// exchange clears the whole session before the error is returned.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	ts := c.currentTokens()
	if ts == nil || ts.RefreshToken() == "" {
		return nil
	}
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.exchangeRefreshToken(ctx)
	})
	return err
}

func (c *HTTPClient) exchangeRefreshToken(ctx context.Context) error {
	ts := c.currentTokens()
	if ts == nil {
		return nil
	}
	refresh := ts.RefreshToken()
	if refresh == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	// The exchange itself authenticates with the refresh token in the
	// body; no bearer header is attached and no retry policy applies.
	status, data, err := c.roundTrip(ctx, http.MethodPost, refreshPath, body, "application/json", "")
	if err != nil {
		// No response at all: keep the session, the caller sees the
		// transport failure.
		return err
	}
	if status >= 400 {
		refreshErr := &RefreshError{StatusCode: status, Payload: data}
		c.log.Warn(ctx, "refresh token rejected, tearing down session", "status", status)
		c.failAuth(ctx)
		return refreshErr
	}

	var resp struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if err := ts.SetAccessToken(ctx, resp.Access); err != nil {
		// The store was torn down while the exchange was in flight; the
		// cleared credentials stay cleared.
		return err
	}

	c.log.Info(ctx, "access token refreshed")
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, loginPath, creds, &resp); err != nil {
		return nil, asAuthError(err)
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, registerPath, reg, &resp); err != nil {
		return nil, asRegistrationError(err)
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd ProfileUpdate) error {
	return c.postJSON(ctx, profilePath, upd, nil)
}

func (c *HTTPClient) DeleteAccount(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, deletePath, nil, "", nil)
}

func (c *HTTPClient) MyKeys(ctx context.Context) (*KeysResponse, error) {
	var resp KeysResponse
	if err := c.Get(ctx, myKeysPath, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &KeyFetchError{StatusCode: apiErr.StatusCode, Payload: apiErr.Payload}
		}
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, "", out)
}

// Upload posts a pre-encoded body (typically multipart form data). The
// content type comes from the caller so the boundary encoding stays with
// whoever built the body; credential attachment and the retry policy are
// identical to the JSON channel. The body is buffered up front so a retry
// can replay it.
func (c *HTTPClient) Upload(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}
	return c.send(ctx, http.MethodPost, path, data, contentType, out)
}

// asAuthError converts a login failure into the auth taxonomy. Transport
// failures pass through untouched.
func asAuthError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	return &AuthError{
		StatusCode: apiErr.StatusCode,
		Detail:     errorDetail(apiErr.Payload),
		Payload:    apiErr.Payload,
	}
}

// asRegistrationError prefers the field-level validation shape and falls
// back to a plain auth error.
func asRegistrationError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if fields := fieldErrors(apiErr.Payload); fields != nil {
		return &ValidationError{
			StatusCode: apiErr.StatusCode,
			Fields:     fields,
			Payload:    apiErr.Payload,
		}
	}
	return &AuthError{
		StatusCode: apiErr.StatusCode,
		Detail:     errorDetail(apiErr.Payload),
		Payload:    apiErr.Payload,
	}
}

var _ Client = (*HTTPClient)(nil)
