// internal/app/features/login/handler.go
package login

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	"github.com/dalemusser/admissions/internal/app/system/auth"
	"github.com/dalemusser/admissions/internal/app/system/ratelimit"
	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MsgInvalid is shown for any wrong username or password.
const MsgInvalid = "Invalid username or password."

// ErrNoCredential is returned by NewHandler when no password is configured.
var ErrNoCredential = errors.New("login: admin password or password hash must be set")

// Credentials is the single configured admin account. PasswordHash is a
// bcrypt hash; Password is a plain dev-only fallback used when no hash
// is set.
type Credentials struct {
	Username     string
	PasswordHash string
	Password     string
}

type Handler struct {
	Creds    Credentials
	Sessions *auth.SessionManager
	Limiter  *ratelimit.LoginLimiter
	ErrLog   *errorsfeature.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(creds Credentials, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) (*Handler, error) {
	if creds.PasswordHash == "" && creds.Password == "" {
		return nil, ErrNoCredential
	}
	if creds.PasswordHash == "" {
		logger.Warn("admin login uses a plain password; set admin_password_hash outside dev")
	}
	return &Handler{
		Creds:    creds,
		Sessions: sm,
		Limiter:  limiter,
		ErrLog:   errLog,
		Log:      logger,
	}, nil
}

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Username  string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Admin Login", "/"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.")
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		h.renderFormWithError(w, r, http.StatusOK, "Please enter your username and password.", username)
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, username); !ok {
			h.Log.Warn("login rate limited",
				zap.String("ip", ratelimit.ClientIP(r)),
				zap.String("username", username))
			h.renderFormWithError(w, r, http.StatusTooManyRequests, msg, username)
			return
		}
	}

	if !h.verify(username, password) {
		h.Log.Info("login failed", zap.String("username", username), zap.String("ip", ratelimit.ClientIP(r)))
		h.renderFormWithError(w, r, http.StatusOK, MsgInvalid, username)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetUser(username)
	}
	if err := h.Sessions.SignIn(w, r, auth.SessionUser{Name: h.Creds.Username, Role: auth.RoleAdmin}); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in", err, "A server error occurred.", "/login")
		return
	}
	h.Log.Info("admin signed in", zap.String("username", h.Creds.Username))

	dest := urlutil.SafeReturn(strings.TrimSpace(r.PostForm.Get("return")), "", "/dashboard")
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// verify matches the username case and accent insensitively, then the
// password against the hash or the dev password.
func (h *Handler) verify(username, password string) bool {
	userOK := text.Fold(username) == text.Fold(h.Creds.Username)
	var passOK bool
	if h.Creds.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(h.Creds.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(h.Creds.Password)) == 1
	}
	return userOK && passOK
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, username string) {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Admin Login", "/"),
		Error:     msg,
		Username:  username,
		ReturnURL: ret,
	})
}
