package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	cookierepo "github.com/highway905/awi-gateway/internal/repo/cookie"
	redisrepo "github.com/highway905/awi-gateway/internal/repo/redis"
	authsvc "github.com/highway905/awi-gateway/internal/services/auth"
	"github.com/highway905/awi-gateway/internal/services/credentials"
)

type passEncryptor struct{}

func (passEncryptor) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

type stubUpstream struct {
	reply       *authsvc.LoginReply
	loginErr    error
	logoutCalls int
	lastBearer  string
}

func (s *stubUpstream) Login(_ context.Context, _, _, _ string) (*authsvc.LoginReply, error) {
	return s.reply, s.loginErr
}

func (s *stubUpstream) Logout(_ context.Context, bearer, _ string) error {
	s.logoutCalls++
	s.lastBearer = bearer
	return nil
}

func successReply(token string) *authsvc.LoginReply {
	expiry := time.Now().Add(time.Hour).UTC()
	return &authsvc.LoginReply{
		StatusCode: http.StatusOK,
		Response: authsvc.LoginPayload{
			Token:        token,
			RefreshToken: "refresh-1",
			ExpiryDate:   &expiry,
			UserID:       "user-1",
			Role:         "operator",
			WarehouseIDs: []authsvc.WarehouseRef{{ID: "wh-1"}},
		},
	}
}

func newTestCredStore(t *testing.T) *credentials.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	durable := redisrepo.NewCredentialRepo(client)
	mirror := cookierepo.NewMirror("userCred", 24*time.Hour, false)
	return credentials.NewStore(durable, mirror, 24*time.Hour, zap.NewNop())
}

func newAuthHandler(t *testing.T, upstream authsvc.Upstream) (*AuthHandler, *credentials.Store) {
	t.Helper()
	creds := newTestCredStore(t)
	svc := authsvc.NewService(passEncryptor{}, upstream, zap.NewNop())
	return NewAuthHandler(svc, creds, "/dashboard", "/login", zap.NewNop()), creds
}

func TestLoginSuccessSetsCookieAndRedirect(t *testing.T) {
	handler, creds := newAuthHandler(t, &stubUpstream{reply: successReply("hh.pp.ss")})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ops@example.com","password":"secret"}`))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Redirect string `json:"redirect"`
		Session  struct {
			Authenticated bool     `json:"authenticated"`
			UserID        string   `json:"userId"`
			WarehouseIDs  []string `json:"warehouseIds"`
		} `json:"session"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Redirect != "/dashboard" {
		t.Fatalf("unexpected redirect: %q", resp.Redirect)
	}
	if !resp.Session.Authenticated || resp.Session.UserID != "user-1" {
		t.Fatalf("unexpected session view: %+v", resp.Session)
	}

	cookies := rr.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == "userCred" {
			found = c
		}
	}
	if found == nil {
		t.Fatalf("userCred cookie not set, cookies: %v", cookies)
	}
	if found.MaxAge != 86400 {
		t.Fatalf("unexpected cookie max-age: %d", found.MaxAge)
	}

	follow := httptest.NewRequest(http.MethodGet, "/session", nil)
	follow.AddCookie(found)
	rec, err := creds.Load(follow.Context(), follow)
	if err != nil || rec == nil {
		t.Fatalf("stored session not loadable: rec=%v err=%v", rec, err)
	}
	if rec.Token != "hh.pp.ss" {
		t.Fatalf("unexpected stored token: %q", rec.Token)
	}
}

func TestLoginEmptyFieldsRejectedLocally(t *testing.T) {
	upstream := &stubUpstream{reply: successReply("hh.pp.ss")}
	handler, _ := newAuthHandler(t, upstream)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"","password":"secret"}`))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "VALIDATION_ERROR") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("no cookie must be written on local validation failure")
	}
}

func TestLoginRejectionClearsStaleCookie(t *testing.T) {
	reply := &authsvc.LoginReply{
		StatusCode: http.StatusBadRequest,
		Response:   authsvc.LoginPayload{Message: "Account locked"},
	}
	handler, _ := newAuthHandler(t, &stubUpstream{reply: reply})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ops@example.com","password":"wrong"}`))
	req.AddCookie(&http.Cookie{Name: "userCred", Value: "stale"})
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Account locked") {
		t.Fatalf("upstream message not surfaced: %s", rr.Body.String())
	}

	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "userCred" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("stale cookie must be expired on rejection")
	}
}

func TestLoginFieldErrorsSurfaced(t *testing.T) {
	reply := &authsvc.LoginReply{
		StatusCode: http.StatusBadRequest,
		Response: authsvc.LoginPayload{
			ValidationFailed: true,
			ValidationErrors: []authsvc.FieldError{{Key: "email", Value: "Email is required"}},
		},
	}
	handler, _ := newAuthHandler(t, &stubUpstream{reply: reply})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ops@example.com","password":"x"}`))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"email":"Email is required"`) {
		t.Fatalf("field detail missing: %s", rr.Body.String())
	}
}

func TestLoginMalformedBody(t *testing.T) {
	handler, _ := newAuthHandler(t, &stubUpstream{})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":`))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestLogoutClearsSessionAndCallsUpstream(t *testing.T) {
	upstream := &stubUpstream{reply: successReply("hh.pp.ss")}
	handler, creds := newAuthHandler(t, upstream)

	loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ops@example.com","password":"secret"}`))
	loginRR := httptest.NewRecorder()
	handler.Login(loginRR, loginReq)
	if loginRR.Code != http.StatusOK {
		t.Fatalf("login failed: %d", loginRR.Code)
	}

	var sessionCookie *http.Cookie
	for _, c := range loginRR.Result().Cookies() {
		if c.Name == "userCred" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatalf("login did not set cookie")
	}

	logoutReq := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logoutReq.AddCookie(sessionCookie)
	logoutRR := httptest.NewRecorder()
	handler.Logout(logoutRR, logoutReq)

	if logoutRR.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", logoutRR.Code)
	}
	if !strings.Contains(logoutRR.Body.String(), "/login") {
		t.Fatalf("logout redirect missing: %s", logoutRR.Body.String())
	}
	if upstream.logoutCalls != 1 || upstream.lastBearer != "hh.pp.ss" {
		t.Fatalf("upstream logout not invoked with bearer: calls=%d bearer=%q", upstream.logoutCalls, upstream.lastBearer)
	}

	// The stale cookie still decodes but its durable twin is gone, so
	// the load must never hand a usable record back.
	check := httptest.NewRequest(http.MethodGet, "/session", nil)
	check.AddCookie(sessionCookie)
	if rec, _ := creds.Load(check.Context(), check); rec != nil {
		t.Fatalf("session must be gone after logout: rec=%v", rec)
	}
}

func TestLogoutWithoutSessionIsIdempotent(t *testing.T) {
	upstream := &stubUpstream{}
	handler, _ := newAuthHandler(t, upstream)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if upstream.logoutCalls != 0 {
		t.Fatalf("no upstream call expected without a session")
	}
}
