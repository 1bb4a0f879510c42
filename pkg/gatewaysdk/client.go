package gatewaysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client talks to a firegate service. It keeps the session cookie in its own
// jar and additionally remembers the session token so it can be sent as a
// Bearer header when the cookie is not applicable.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client with a cookie jar and a 10 second timeout.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// SessionToken returns the token of the last issued session, if any.
func (c *Client) SessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetSessionToken overrides the remembered session token.
func (c *Client) SetSessionToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Login submits credentials for kind. A provisional password yields a
// *PasswordChangeRequiredError.
func (c *Client) Login(ctx context.Context, kind string, req LoginRequest) (*LoginResponse, error) {
	if errs := req.Validate(kind); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/"+url.PathEscape(kind)+"/login", nil, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	c.SetSessionToken(out.SessionToken)
	return &out, nil
}

// ChangePassword completes a pending change or changes the password of the
// signed-in principal.
func (c *Client) ChangePassword(ctx context.Context, kind string, req ChangePasswordRequest) (*LoginResponse, error) {
	if errs := req.Validate(); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/"+url.PathEscape(kind)+"/change-password", nil, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	c.SetSessionToken(out.SessionToken)
	return &out, nil
}

// Logout revokes the current session.
func (c *Client) Logout(ctx context.Context, kind string) error {
	err := c.do(ctx, http.MethodPost, "/v1/auth/"+url.PathEscape(kind)+"/logout", nil, nil, nil, http.StatusNoContent)
	if err == nil {
		c.SetSessionToken("")
	}
	return err
}

// Session returns the current principal.
func (c *Client) Session(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.do(ctx, http.MethodGet, "/v1/session", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Guard asks whether the current session may open path.
func (c *Client) Guard(ctx context.Context, path string) (*GuardResponse, error) {
	var out GuardResponse
	q := url.Values{"path": {path}}
	if err := c.do(ctx, http.MethodGet, "/v1/guard?"+q.Encode(), nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bootstrap creates the first SuperAdmin.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	if errs := req.Validate(); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	var out BootstrapResponse
	headers := map[string]string{"X-Bootstrap-Token": token}
	if err := c.do(ctx, http.MethodPost, "/v1/bootstrap", headers, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProvisionPrincipal creates a principal with a provisional password.
func (c *Client) ProvisionPrincipal(ctx context.Context, req ProvisionPrincipalRequest) (*ProvisionPrincipalResponse, error) {
	if errs := req.Validate(); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	var out ProvisionPrincipalResponse
	if err := c.do(ctx, http.MethodPost, "/v1/principals", nil, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPrincipals lists principals, optionally filtered by kind.
func (c *Client) ListPrincipals(ctx context.Context, kind string) ([]Principal, error) {
	path := "/v1/principals"
	if kind != "" {
		path += "?" + url.Values{"kind": {kind}}.Encode()
	}

	var out PrincipalsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Principals, nil
}

// ListUnits lists units, optionally for one station.
func (c *Client) ListUnits(ctx context.Context, stationID string) ([]Unit, error) {
	path := "/v1/units"
	if stationID != "" {
		path += "?" + url.Values{"station_id": {stationID}}.Encode()
	}

	var out UnitsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Units, nil
}

// SetUnitActive activates or deactivates a unit.
func (c *Client) SetUnitActive(ctx context.Context, id string, active bool) (*Unit, error) {
	action := "deactivate"
	if active {
		action = "activate"
	}

	var out Unit
	if err := c.do(ctx, http.MethodPost, "/v1/units/"+url.PathEscape(id)+"/"+action, nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service can serve traffic.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends a JSON request and decodes the expected response. Transport
// failures come back as *NetworkError, error responses as parsed by
// parseErrorResponse.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	headers map[string]string,
	body any,
	target any,
	expectedStatus int,
) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.SessionToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode != expectedStatus {
		if perr := parseErrorResponse(resp, raw); perr != nil {
			return perr
		}
		return &AuthError{StatusCode: resp.StatusCode, Code: ErrorCodeServerError, Message: "unexpected status " + resp.Status}
	}

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
