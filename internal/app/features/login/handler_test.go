package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/classhub/internal/app/features/login"
	"github.com/dalemusser/classhub/internal/app/system/auth"
)

const testPassword = "correct horse battery staple"

func newTestHandler(t *testing.T) *login.Handler {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword failed: %v", err)
	}

	// nil limiter: rate limiting is exercised separately
	return login.NewHandler(sessionMgr, nil, "operator", string(hash), logger)
}

func postLogin(t *testing.T, h *login.Handler, loginID, password, returnURL string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("login", loginID)
	form.Set("password", password)
	if returnURL != "" {
		form.Set("return", returnURL)
	}

	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)
	return rec
}

func TestServeForm_RendersLogin(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/login", nil)
	rec := httptest.NewRecorder()
	h.ServeForm(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<form") {
		t.Error("expected a login form in the response")
	}
}

func TestHandleLogin_Success(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(t, h, "operator", testPassword, "")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/console" {
		t.Errorf("Location = %q, want /console", loc)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Error("expected a session cookie after successful login")
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(t, h, "operator", "nope", "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid login or password") {
		t.Error("expected the error message in the re-rendered form")
	}
}

func TestHandleLogin_WrongLogin(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(t, h, "admin", testPassword, "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleLogin_ReturnURLPreserved(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(t, h, "operator", testPassword, "/console?actor=u1")

	if loc := rec.Header().Get("Location"); loc != "/console?actor=u1" {
		t.Errorf("Location = %q, want /console?actor=u1", loc)
	}
}

func TestHandleLogin_ExternalReturnURLRejected(t *testing.T) {
	h := newTestHandler(t)

	tests := []string{
		"https://evil.example.com/",
		"//evil.example.com/",
		"evil",
	}
	for _, ret := range tests {
		rec := postLogin(t, h, "operator", testPassword, ret)
		if loc := rec.Header().Get("Location"); loc != "/console" {
			t.Errorf("return %q: Location = %q, want /console", ret, loc)
		}
	}
}
