// internal/app/features/errors/errors.go
package errors

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/classhub/internal/app/system/auth"
)

// pageData is the basic view model for error pages.
type pageData struct {
	Title    string
	UserName string
	Message  string
	BackURL  string
}

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
  <h1>{{.Title}}</h1>
  <p>{{.Message}}</p>
  {{if .UserName}}<p>Signed in as {{.UserName}}.</p>{{end}}
  <p><a href="{{.BackURL}}">Continue</a></p>
</body>
</html>
`))

// Handler is the errors feature handler. No DB needed.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorTmpl.Execute(w, data)
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	name := ""
	if u, ok := auth.CurrentUser(r); ok {
		name = u.Name
	}
	render(w, http.StatusForbidden, pageData{
		Title:    "Access denied",
		UserName: name,
		Message:  "You don't have permission to view this page.",
		BackURL:  "/",
	})
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	name := ""
	if u, ok := auth.CurrentUser(r); ok {
		name = u.Name
	}
	render(w, http.StatusUnauthorized, pageData{
		Title:    "Sign in required",
		UserName: name,
		Message:  "Please sign in to continue.",
		BackURL:  "/login",
	})
}
