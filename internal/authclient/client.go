// Package authclient talks to the Neural Feed HTTP API on behalf of the
// command line client. Client satisfies the authflow collaborators.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/nfrund/neuralfeed/internal/auth"
	"github.com/nfrund/neuralfeed/internal/authflow"
)

// ErrNotSignedIn is returned by calls that need a session when there is
// none or the server rejected it.
var ErrNotSignedIn = errors.New("not signed in")

const defaultTimeout = 15 * time.Second

// Client is an API client bound to one server. Session cookies live in a
// cookie jar and are mirrored to the SessionStore.
type Client struct {
	base     *url.URL
	http     *http.Client
	sessions *SessionStore
	now      func() time.Time
}

var (
	_ authflow.Authenticator  = (*Client)(nil)
	_ authflow.AccountCreator = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport. Its jar and redirect
// policy are overwritten.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for serverURL and restores any stored session for
// that server.
func New(serverURL string, sessions *SessionStore, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", serverURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:     base,
		http:     &http.Client{Timeout: defaultTimeout},
		sessions: sessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Jar = jar
	// Redirects point at browser pages; the JSON reply is what we want.
	c.http.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	if err := c.restore(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) restore() error {
	sess, err := c.sessions.Load()
	if err != nil || sess == nil {
		return err
	}
	if sess.ServerURL != c.base.String() || sess.Expired(c.now()) {
		return nil
	}
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: auth.SessionCookieName, Value: sess.Token, Path: "/"}})
	return nil
}

// SignInCredentials posts to the credentials callback. A refused sign-in
// comes back as a result with OK false, not as an error.
func (c *Client) SignInCredentials(ctx context.Context, email, password string) (authflow.SignInResult, error) {
	resp, err := c.postJSON(ctx, "/api/auth/callback/credentials", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return authflow.SignInResult{}, err
	}
	defer resp.Body.Close()

	res, err := decodeResult(resp)
	if err != nil {
		return res, err
	}
	if res.Succeeded() {
		if err := c.persist(resp); err != nil {
			return res, err
		}
	}
	return res, nil
}

// SignInFederated asks the server for the provider's authorization URL.
func (c *Client) SignInFederated(ctx context.Context, provider string) (authflow.SignInResult, error) {
	resp, err := c.postJSON(ctx, "/api/auth/signin/"+url.PathEscape(provider), map[string]bool{"redirect": false})
	if err != nil {
		return authflow.SignInResult{}, err
	}
	defer resp.Body.Close()
	return decodeResult(resp)
}

// CreateAccount posts to /api/register. Any non-2xx reply is returned as a
// *authflow.ServerError carrying the response text.
func (c *Client) CreateAccount(ctx context.Context, creds authflow.Credentials) (*authflow.Account, error) {
	resp, err := c.postJSON(ctx, "/api/register", creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serverError(resp)
	}
	var account authflow.Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return &account, nil
}

// Whoami returns the signed-in user.
func (c *Client) Whoami(ctx context.Context) (*authflow.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/auth/session"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrNotSignedIn
	}
	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp)
	}

	var body struct {
		User authflow.Account `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &body.User, nil
}

// Logout signs out on the server and forgets the local session. The local
// session is removed even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.postJSON(ctx, "/api/auth/signout", struct{}{})
	if resp != nil {
		resp.Body.Close()
	}
	if cerr := c.sessions.Clear(); cerr != nil {
		return cerr
	}
	return err
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// persist stores the session cookie set by resp.
func (c *Client) persist(resp *http.Response) error {
	for _, ck := range resp.Cookies() {
		if ck.Name != auth.SessionCookieName || ck.Value == "" {
			continue
		}
		return c.sessions.Save(&Session{
			ServerURL: c.base.String(),
			Token:     ck.Value,
			ExpiresAt: ck.Expires,
		})
	}
	return nil
}

// decodeResult reads a SignInResult. Sign-in endpoints answer JSON even on
// failure, so only an undecodable body is an error.
func decodeResult(resp *http.Response) (authflow.SignInResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return authflow.SignInResult{}, fmt.Errorf("failed to read response: %w", err)
	}
	var res authflow.SignInResult
	if err := json.Unmarshal(body, &res); err != nil {
		return authflow.SignInResult{}, &authflow.ServerError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return authflow.SignInResult{}, &authflow.ServerError{StatusCode: resp.StatusCode, Message: res.Error}
	}
	if res.Status == 0 {
		res.Status = resp.StatusCode
	}
	return res, nil
}

func serverError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &authflow.ServerError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
