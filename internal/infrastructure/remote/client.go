package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/pkg/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// Endpoints are the backend paths this client calls. Zero fields fall back
// to DefaultEndpoints.
type Endpoints struct {
	Login          string
	Signup         string
	Logout         string
	WhoAmI         string
	UserByID       string // contains "{id}"
	Profile        string
	ForgotPassword string
	VerifyOTP      string
	ResetPassword  string
	SendEmail      string
}

var DefaultEndpoints = Endpoints{
	Login:          "/auth/login",
	Signup:         "/auth/signup",
	Logout:         "/auth/logout",
	WhoAmI:         "/auth/me",
	UserByID:       "/user/{id}",
	Profile:        "/auth/me",
	ForgotPassword: "/auth/forgot-password",
	VerifyOTP:      "/auth/verify-otp",
	ResetPassword:  "/auth/reset-password",
	SendEmail:      "/email/send",
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Endpoints Endpoints
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks JSON to the hosted backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	endpoints  Endpoints
}

var _ ports.AuthAPI = (*Client)(nil)

// NewClient creates a client for the backend at cfg.BaseURL.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
		endpoints:  withDefaults(cfg.Endpoints),
	}
}

func withDefaults(e Endpoints) Endpoints {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	d := DefaultEndpoints
	return Endpoints{
		Login:          pick(e.Login, d.Login),
		Signup:         pick(e.Signup, d.Signup),
		Logout:         pick(e.Logout, d.Logout),
		WhoAmI:         pick(e.WhoAmI, d.WhoAmI),
		UserByID:       pick(e.UserByID, d.UserByID),
		Profile:        pick(e.Profile, d.Profile),
		ForgotPassword: pick(e.ForgotPassword, d.ForgotPassword),
		VerifyOTP:      pick(e.VerifyOTP, d.VerifyOTP),
		ResetPassword:  pick(e.ResetPassword, d.ResetPassword),
		SendEmail:      pick(e.SendEmail, d.SendEmail),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.APIResponse, error) {
	return c.do(ctx, "login", http.MethodPost, c.endpoints.Login, "", loginRequest{Email: email, Password: password})
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*ports.APIResponse, error) {
	return c.do(ctx, "signup", http.MethodPost, c.endpoints.Signup, "", signupRequest{Name: name, Email: email, Password: password})
}

func (c *Client) Logout(ctx context.Context, token string) (*ports.APIResponse, error) {
	return c.do(ctx, "logout", http.MethodPost, c.endpoints.Logout, token, nil)
}

func (c *Client) WhoAmI(ctx context.Context, token string) (*ports.APIResponse, error) {
	return c.do(ctx, "who_am_i", http.MethodGet, c.endpoints.WhoAmI, token, nil)
}

func (c *Client) UserByID(ctx context.Context, token, id string) (*ports.APIResponse, error) {
	path := strings.ReplaceAll(c.endpoints.UserByID, "{id}", url.PathEscape(id))
	return c.do(ctx, "user_detail", http.MethodGet, path, token, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*ports.APIResponse, error) {
	return c.do(ctx, "profile", http.MethodGet, c.endpoints.Profile, token, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (*ports.APIResponse, error) {
	return c.do(ctx, "forgot_password", http.MethodPost, c.endpoints.ForgotPassword, "", otpRequest{Email: email})
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*ports.APIResponse, error) {
	return c.do(ctx, "verify_otp", http.MethodPost, c.endpoints.VerifyOTP, "", otpRequest{Email: email, OTP: otp})
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, password string) (*ports.APIResponse, error) {
	return c.do(ctx, "reset_password", http.MethodPost, c.endpoints.ResetPassword, "", otpRequest{Email: email, OTP: otp, NewPassword: password})
}

func (c *Client) SendEmail(ctx context.Context, msg ports.EmailMessage) (*ports.APIResponse, error) {
	return c.do(ctx, "send_email", http.MethodPost, c.endpoints.SendEmail, "", msg)
}

// do performs one request. Only transport failures return an error; every
// completed response is handed back with whatever JSON object it carried.
func (c *Client) do(ctx context.Context, endpoint, method, path, token string, payload any) (*ports.APIResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%s request: %w: %v", endpoint, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	metrics.RemoteRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	return &ports.APIResponse{Status: resp.StatusCode, Body: decodeObject(resp.Body)}, nil
}

// decodeObject reads a JSON object body. Anything else yields an empty map.
func decodeObject(r io.Reader) map[string]any {
	out := map[string]any{}
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return out
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return out
	}
	return obj
}
