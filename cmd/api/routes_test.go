package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"bankapi/internal/shared/config"
	"bankapi/internal/shared/middleware"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Storage:  config.StorageConfig{Driver: config.StorageDriverMemory},
		JWT:      config.JWTConfig{Secret: "test-secret", TTL: 15 * time.Minute},
		Password: config.PasswordConfig{BcryptCost: 4},
	}
	deps, err := NewDependencies(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDependencies() failed: %v", err)
	}
	t.Cleanup(deps.Close)
	return SetupRoutes(deps, cfg, zerolog.Nop())
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	var decoded map[string]any
	json.Unmarshal(rr.Body.Bytes(), &decoded)
	return rr, decoded
}

func (c *client) mustStatus(rr *httptest.ResponseRecorder, status int) {
	c.t.Helper()
	if rr.Code != status {
		c.t.Fatalf("%d, want %d: %s", rr.Code, status, rr.Body.String())
	}
}

func (c *client) signUp(name, email string) {
	c.t.Helper()
	rr, _ := c.do(http.MethodPost, "/auth/register", `{"name":"`+name+`","email":"`+email+`","password":"pw"}`)
	c.mustStatus(rr, http.StatusCreated)

	rr, body := c.do(http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"pw"}`)
	c.mustStatus(rr, http.StatusOK)
	if body["user"] != name {
		c.t.Fatalf("login user = %v, want %s", body["user"], name)
	}
	c.token = body["access_token"].(string)
}

func (c *client) openAccount() string {
	c.t.Helper()
	rr, body := c.do(http.MethodPost, "/account/create", `{"account_type":"chequing"}`)
	c.mustStatus(rr, http.StatusCreated)
	return jsonNumber(body["account_id"])
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestLedgerScenario(t *testing.T) {
	h := newTestHandler(t)
	alice := &client{t: t, handler: h}
	bob := &client{t: t, handler: h}
	alice.signUp("Alice", "alice@example.com")
	bob.signUp("Bob", "bob@example.com")

	a := alice.openAccount()
	b := bob.openAccount()

	rr, body := alice.do(http.MethodGet, "/account/balance/"+a, "")
	alice.mustStatus(rr, http.StatusOK)
	if body["balance"] != 0.0 {
		t.Fatalf("new account balance = %v", body["balance"])
	}

	rr, body = alice.do(http.MethodPost, "/account/deposit", `{"account_id":`+a+`,"amount":100}`)
	alice.mustStatus(rr, http.StatusOK)
	if body["new_balance"] != 100.0 {
		t.Errorf("after deposit = %v, want 100", body["new_balance"])
	}

	rr, body = alice.do(http.MethodPost, "/account/withdraw", `{"account_id":`+a+`,"amount":"30"}`)
	alice.mustStatus(rr, http.StatusOK)
	if body["new_balance"] != 70.0 {
		t.Errorf("after withdraw = %v, want 70", body["new_balance"])
	}

	rr, body = alice.do(http.MethodPost, "/account/transfer", `{"from_account":`+a+`,"to_account":`+b+`,"amount":20}`)
	alice.mustStatus(rr, http.StatusOK)
	if body["sender_new_balance"] != 50.0 || body["receiver_new_balance"] != 20.0 {
		t.Errorf("after transfer = %v / %v, want 50 / 20", body["sender_new_balance"], body["receiver_new_balance"])
	}
	groupID, _ := body["transfer_group_id"].(string)
	if groupID == "" {
		t.Error("transfer_group_id missing")
	}

	rr, _ = alice.do(http.MethodGet, "/account/transactions/"+a, "")
	alice.mustStatus(rr, http.StatusOK)
	var history struct {
		Transactions []struct {
			Type            string  `json:"type"`
			Amount          float64 `json:"amount"`
			TransferGroupID string  `json:"transfer_group_id"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	types := make([]string, 0, len(history.Transactions))
	for _, tx := range history.Transactions {
		types = append(types, tx.Type)
	}
	if strings.Join(types, ",") != "transfer_out,withdraw,deposit" {
		t.Errorf("history types = %v", types)
	}
	if history.Transactions[0].TransferGroupID != groupID {
		t.Errorf("transfer_out group = %q, want %q", history.Transactions[0].TransferGroupID, groupID)
	}

	rr, _ = bob.do(http.MethodGet, "/account/transactions/"+b, "")
	bob.mustStatus(rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"type":"transfer_in"`) || !strings.Contains(rr.Body.String(), groupID) {
		t.Errorf("receiver history = %s", rr.Body.String())
	}

	// Bob cannot see or move Alice's money.
	rr, _ = bob.do(http.MethodGet, "/account/balance/"+a, "")
	bob.mustStatus(rr, http.StatusForbidden)
	rr, _ = bob.do(http.MethodPost, "/account/withdraw", `{"account_id":`+a+`,"amount":1}`)
	bob.mustStatus(rr, http.StatusForbidden)

	rr, _ = alice.do(http.MethodPost, "/account/transfer", `{"from_account":`+a+`,"to_account":`+a+`,"amount":1}`)
	alice.mustStatus(rr, http.StatusBadRequest)

	rr, _ = alice.do(http.MethodGet, "/account/list", "")
	alice.mustStatus(rr, http.StatusOK)
	var accounts []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &accounts); err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0]["balance"] != 50.0 {
		t.Errorf("alice accounts = %s", rr.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newTestHandler(t)
	anon := &client{t: t, handler: h}

	routes := []struct{ method, path string }{
		{http.MethodPost, "/account/create"},
		{http.MethodPost, "/account/deposit"},
		{http.MethodPost, "/account/withdraw"},
		{http.MethodPost, "/account/transfer"},
		{http.MethodGet, "/account/balance/1"},
		{http.MethodGet, "/account/transactions/1"},
		{http.MethodGet, "/account/list"},
	}
	for _, rt := range routes {
		rr, body := anon.do(rt.method, rt.path, `{}`)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s = %d, want 401", rt.method, rt.path, rr.Code)
		}
		if body["error"] == nil {
			t.Errorf("%s %s: missing error body", rt.method, rt.path)
		}
	}

	anon.token = "not-a-jwt"
	rr, _ := anon.do(http.MethodGet, "/account/list", "")
	anon.mustStatus(rr, http.StatusUnauthorized)
}

func TestGlobalMiddleware(t *testing.T) {
	h := newTestHandler(t)
	c := &client{t: t, handler: h}

	rr, _ := c.do(http.MethodGet, "/health", "")
	c.mustStatus(rr, http.StatusOK)
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("response is missing a request id")
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}

	rr, _ = c.do(http.MethodGet, "/", "")
	c.mustStatus(rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "live") {
		t.Errorf("banner = %q", rr.Body.String())
	}

	rr, _ = c.do(http.MethodGet, "/auth/login", "")
	c.mustStatus(rr, http.StatusMethodNotAllowed)

	rr, _ = c.do(http.MethodGet, "/nope", "")
	c.mustStatus(rr, http.StatusNotFound)
}

func TestRedirectHandler(t *testing.T) {
	h := redirectHandler([]string{"bank.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/account/list?x=1", nil)
	req.Host = "bank.example.com:80"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "https://bank.example.com/account/list?x=1" {
		t.Errorf("Location = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "evil.example.com"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("disallowed host status = %d", rr.Code)
	}
}

func TestRedirectHandler_IgnoresForwardedHost(t *testing.T) {
	h := redirectHandler([]string{"bank.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/account/list", nil)
	req.Host = "bank.example.com"
	req.Header.Set("X-Forwarded-Host", "evil.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Location"); got != "https://bank.example.com/account/list" {
		t.Errorf("Location = %q", got)
	}
}

func TestRedirectHandler_NoAllowedHosts(t *testing.T) {
	h := redirectHandler(nil)

	for _, host := range []string{"evil.example.com", "bank.example.com:80"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = host
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("host %q status = %d, want %d", host, rr.Code, http.StatusBadRequest)
		}
		if loc := rr.Header().Get("Location"); loc != "" {
			t.Errorf("host %q redirected to %q", host, loc)
		}
	}
}
