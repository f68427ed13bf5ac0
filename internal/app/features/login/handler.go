// internal/app/features/login/handler.go
package login

import (
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/navigation"
	"github.com/dalemusser/classhub/internal/app/system/ratelimit"
)

// Handler signs the configured operator into the console. There is no user
// database behind this surface; the single operator credential comes from
// configuration as a bcrypt hash.
type Handler struct {
	Log          *zap.Logger
	SessionMgr   *auth.SessionManager
	Limiter      *ratelimit.LoginLimiter
	OperatorID   string
	OperatorHash string // bcrypt hash of the operator password
}

func NewHandler(sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, operatorID, operatorHash string, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		Limiter:      limiter,
		OperatorID:   operatorID,
		OperatorHash: operatorHash,
	}
}

type loginFormData struct {
	Error     string
	LoginID   string
	ReturnURL string
}

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
  <h1>Sign in</h1>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  <form method="post" action="/login">
    <input type="hidden" name="return" value="{{.ReturnURL}}">
    <label>Login <input type="text" name="login" value="{{.LoginID}}" autofocus></label>
    <label>Password <input type="password" name="password"></label>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>
`))

func (h *Handler) renderForm(w http.ResponseWriter, status int, data loginFormData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := loginTmpl.Execute(w, data); err != nil {
		h.Log.Error("login: render form", zap.Error(err))
	}
}

// ServeForm handles GET /login.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, loginFormData{
		ReturnURL: navigation.SafeBackURL(r, navigation.ConsoleBackURL),
	})
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	loginID := strings.TrimSpace(r.PostFormValue("login"))
	password := r.PostFormValue("password")
	returnURL := navigation.SafeBackURL(r, navigation.ConsoleBackURL)

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, loginID); !ok {
			h.Log.Warn("login rate limited",
				zap.String("login", loginID),
				zap.String("ip", ratelimit.ClientIP(r)))
			h.renderForm(w, http.StatusTooManyRequests, loginFormData{
				Error: reason, LoginID: loginID, ReturnURL: returnURL,
			})
			return
		}
	}

	// bcrypt comparison runs even for a wrong login id so the two failure
	// modes are not distinguishable by timing.
	err := bcrypt.CompareHashAndPassword([]byte(h.OperatorHash), []byte(password))
	if err != nil || loginID != h.OperatorID {
		h.Log.Warn("login failed",
			zap.String("login", loginID),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.renderForm(w, http.StatusUnauthorized, loginFormData{
			Error: "Invalid login or password.", LoginID: loginID, ReturnURL: returnURL,
		})
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetLogin(loginID)
	}

	user := &auth.SessionUser{ID: h.OperatorID, Name: h.OperatorID, Role: "operator"}
	if err := h.SessionMgr.SignIn(w, r, user); err != nil {
		h.Log.Error("login: save session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("operator signed in", zap.String("login", loginID))
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}
