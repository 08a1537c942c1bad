package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/highway905/awi-gateway/internal/domain/model"
)

// LoginReply is the upstream login envelope. The top-level statusCode
// is the business discriminator; the transport status is ignored for
// classification.
type LoginReply struct {
	StatusCode int          `json:"statusCode"`
	Response   LoginPayload `json:"response"`
	TraceID    string       `json:"traceId"`
	Message    string       `json:"message"`
}

type LoginPayload struct {
	Token            string         `json:"token"`
	RefreshToken     string         `json:"refreshToken"`
	ExpiryDate       *time.Time     `json:"expiryDate"`
	ExpiresInMinutes int            `json:"expiresInMinutes"`
	UserID           string         `json:"userId"`
	Role             string         `json:"role"`
	SecurityStamp    string         `json:"securityStamp"`
	WarehouseIDs     []WarehouseRef `json:"warehouseIds"`
	Message          string         `json:"message"`
	ValidationFailed bool           `json:"validationFailed"`
	ValidationErrors []FieldError   `json:"validationErrors"`
}

type WarehouseRef struct {
	ID string `json:"id"`
}

// Success requires both the status discriminator and a token: a
// success code without a token is still a logical failure.
func (r *LoginReply) Success() bool {
	return (r.StatusCode == 0 || r.StatusCode == http.StatusOK) && r.Response.Token != ""
}

// FailureMessage prefers the payload-level message over the envelope
// one.
func (r *LoginReply) FailureMessage() string {
	if r.Response.Message != "" {
		return r.Response.Message
	}
	return r.Message
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client talks to the upstream warehouse API.
type Client struct {
	baseURL       string
	loginPath     string
	logoutPath    string
	warehousePath string
	http          *http.Client
}

func NewClient(baseURL, loginPath, logoutPath, warehousePath string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:       baseURL,
		loginPath:     loginPath,
		logoutPath:    logoutPath,
		warehousePath: warehousePath,
		http:          httpClient,
	}
}

// Login posts the encrypted credential pair. The body is decoded for
// any transport status, since failure envelopes arrive on 4xx too.
func (c *Client) Login(ctx context.Context, username, password, traceID string) (*LoginReply, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trace-Id", traceID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var reply LoginReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	return &reply, nil
}

// Logout fires the best-effort invalidation call. The response body is
// irrelevant for control flow.
func (c *Client) Logout(ctx context.Context, bearer, traceID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.logoutPath, nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("X-Trace-Id", traceID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("logout returned status %d", resp.StatusCode)
	}
	return nil
}

// Warehouses fetches the auxiliary warehouse list used to fill the TTL
// cache.
func (c *Client) Warehouses(ctx context.Context, bearer string) ([]model.Warehouse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.warehousePath, nil)
	if err != nil {
		return nil, fmt.Errorf("build warehouse request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("warehouse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("warehouse request returned status %d", resp.StatusCode)
	}

	var envelope struct {
		StatusCode int               `json:"statusCode"`
		Response   []model.Warehouse `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode warehouse response: %w", err)
	}

	return envelope.Response, nil
}

// tokenExpiry pulls the exp claim out of a JWT without verifying its
// signature. Used only to backfill a missing expiryDate; a token that
// does not parse contributes nothing.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return &exp.Time
}
