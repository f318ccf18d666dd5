package login

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	"github.com/dalemusser/admissions/internal/app/system/auth"
	"github.com/dalemusser/admissions/internal/app/system/ratelimit"
	"github.com/dalemusser/admissions/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T, creds Credentials, limiter *ratelimit.LoginLimiter) *Handler {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "", "", time.Hour, false, logger)
	if err != nil {
		t.Fatal(err)
	}
	h, err := NewHandler(creds, sm, limiter, errorsfeature.NewErrorLogger(logger), logger)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func postLogin(values url.Values) *http.Request {
	return testutil.NewFormRequest("/login", values)
}

// serve runs fn, tolerating a panic from rendering without a booted
// template engine.
func serve(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestNewHandler_RequiresCredential(t *testing.T) {
	_, err := NewHandler(Credentials{Username: "admin"}, nil, nil, nil, zap.NewNop())
	if err != ErrNoCredential {
		t.Errorf("err = %v, want ErrNoCredential", err)
	}
}

func TestVerify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	hashed := newTestHandler(t, Credentials{Username: "Admin", PasswordHash: string(hash)}, nil)
	plain := newTestHandler(t, Credentials{Username: "admin", Password: "dev"}, nil)

	tests := []struct {
		name     string
		h        *Handler
		user     string
		password string
		want     bool
	}{
		{"hash ok", hashed, "admin", "s3cret", true},
		{"hash wrong password", hashed, "admin", "nope", false},
		{"hash wrong user", hashed, "root", "s3cret", false},
		{"plain ok", plain, "ADMIN", "dev", true},
		{"plain wrong", plain, "admin", "Dev", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.h.verify(tt.user, tt.password); got != tt.want {
				t.Errorf("verify(%q, %q) = %v, want %v", tt.user, tt.password, got, tt.want)
			}
		})
	}
}

func TestHandleLoginPost_Success(t *testing.T) {
	h := newTestHandler(t, Credentials{Username: "admin", Password: "dev"}, ratelimit.NewLoginLimiter())
	rec := testutil.NewRecorder()

	h.HandleLoginPost(rec, postLogin(url.Values{"username": {"admin"}, "password": {"dev"}}))

	rec.AssertRedirect(t, "/dashboard")
	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie set")
	}
}

func TestHandleLoginPost_UnsafeReturnIgnored(t *testing.T) {
	h := newTestHandler(t, Credentials{Username: "admin", Password: "dev"}, nil)
	rec := httptest.NewRecorder()

	h.HandleLoginPost(rec, postLogin(url.Values{
		"username": {"admin"},
		"password": {"dev"},
		"return":   {"https://evil.example/phish"},
	}))

	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	h := newTestHandler(t, Credentials{Username: "admin", Password: "dev"}, limiter)

	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		rec = httptest.NewRecorder()
		serve(func() {
			h.HandleLoginPost(rec, postLogin(url.Values{"username": {"admin"}, "password": {"wrong"}}))
		})
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("third attempt status = %d, want 429", rec.Code)
	}

	// The right password is still refused while limited.
	rec = httptest.NewRecorder()
	serve(func() {
		h.HandleLoginPost(rec, postLogin(url.Values{"username": {"admin"}, "password": {"dev"}}))
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("limited success status = %d, want 429", rec.Code)
	}
}
