// Package identity talks to the hosted identity provider over the GoTrue REST protocol.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/merthanaya/pos-backend/pkg/config"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
)

const (
	authPath                  = "/auth/v1"
	responseBodyReadLimit     = 4096
	defaultTimeout            = 10 * time.Second
	grantTypePassword         = "password"
	grantTypeRefreshToken     = "refresh_token"
	headerAPIKey              = "apikey"
	headerAuthorization       = "Authorization"
	providerUnavailableReason = "identity provider unavailable"
)

var (
	errURLRequired        = errors.New("identity provider url is required")
	errAnonKeyRequired    = errors.New("identity provider anon key is required")
	errServiceKeyRequired = errors.New("identity provider service role key is required")
)

// User is the provider-side account.
type User struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is the token pair issued by a password or refresh grant.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// AdminUserUpdate carries the provider fields an administrator may change.
type AdminUserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Client wraps the GoTrue endpoints used by the POS.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	serviceKey string
	jwtSecret  string
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the clock used for the local expiry check.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds the provider client from configuration.
func NewClient(cfg config.IdentityConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	switch {
	case baseURL == "":
		return nil, errURLRequired
	case strings.TrimSpace(cfg.AnonKey) == "":
		return nil, errAnonKeyRequired
	case strings.TrimSpace(cfg.ServiceRoleKey) == "":
		return nil, errServiceKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		anonKey:    strings.TrimSpace(cfg.AnonKey),
		serviceKey: strings.TrimSpace(cfg.ServiceRoleKey),
		jwtSecret:  cfg.JWTSecret,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// GetUser validates an access token with the provider and returns the owning account.
// The token is pre-checked locally first; a malformed or expired token never leaves the process.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if _, err := PreCheck(accessToken, c.jwtSecret, c.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	var user User
	if err := c.do(ctx, http.MethodGet, "/user", nil, c.anonKey, accessToken, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	return &user, nil
}

// SignInWithPassword runs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	query := url.Values{"grant_type": {grantTypePassword}}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/token", query, c.anonKey, c.anonKey, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RefreshSession exchanges a refresh token for a new pair.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	query := url.Values{"grant_type": {grantTypeRefreshToken}}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/token", query, c.anonKey, c.anonKey, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, c.anonKey, accessToken, nil, nil)
}

// ResetPasswordForEmail asks the provider to mail a recovery link.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	var query url.Values
	if strings.TrimSpace(redirectTo) != "" {
		query = url.Values{"redirect_to": {redirectTo}}
	}
	return c.do(ctx, http.MethodPost, "/recover", query, c.anonKey, c.anonKey, map[string]string{"email": email}, nil)
}

// AdminCreateUser creates a confirmed account using the service role key.
func (c *Client) AdminCreateUser(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}
	if len(metadata) > 0 {
		body["user_metadata"] = metadata
	}
	var user User
	if err := c.do(ctx, http.MethodPost, "/admin/users", nil, c.serviceKey, c.serviceKey, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminUpdateUser changes provider-side attributes of an account.
func (c *Client) AdminUpdateUser(ctx context.Context, id uuid.UUID, update AdminUserUpdate) error {
	return c.do(ctx, http.MethodPut, "/admin/users/"+id.String(), nil, c.serviceKey, c.serviceKey, update, nil)
}

// AdminDeleteUser removes an account.
func (c *Client) AdminDeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+id.String(), nil, c.serviceKey, c.serviceKey, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, apiKey, bearer string, body, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "identity client not configured")
	}

	endpoint := c.baseURL + authPath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal identity request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build identity request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerAPIKey, apiKey)
	req.Header.Set(headerAuthorization, "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, providerUnavailableReason)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return statusError(method+" "+path, resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode identity response")
	}
	return nil
}

// providerError covers the three error shapes GoTrue emits.
type providerError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (p providerError) text() string {
	for _, candidate := range []string{p.Msg, p.ErrorDescription, p.Message, p.Error} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

func statusError(op string, status int, raw []byte) error {
	var parsed providerError
	_ = json.Unmarshal(raw, &parsed)
	msg := parsed.text()
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	cause := fmt.Errorf("%s: status %d: %s", op, status, msg)

	switch {
	case status >= http.StatusInternalServerError:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, providerUnavailableReason)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, orDefault(msg, "invalid credentials"))
	case status == http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, orDefault(msg, "identity user not found"))
	case status == http.StatusTooManyRequests:
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, cause, orDefault(msg, "too many requests"))
	case status == http.StatusConflict || strings.Contains(strings.ToLower(msg), "already"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, orDefault(msg, "account already exists"))
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "invalid"):
		// invalid_grant on the token endpoint is a credential failure, not malformed input.
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, msg)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, orDefault(msg, "identity request rejected"))
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
