package view

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stockroom-ims/stockroom/internal/shared"
)

// Responder renders pages with the per-request chrome: CSRF token, pending
// flash and the signed-in user.
type Responder struct {
	Templates *Engine
	CSRF      *shared.CSRFManager
	Logger    *slog.Logger
}

// Page renders a page template with the given status.
func (p Responder) Page(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	token, _ := p.CSRF.EnsureToken(sess)
	viewData := TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		User:        sess.User(),
		Data:        data,
	}
	var buf bytes.Buffer
	if err := p.Templates.Render(&buf, name, viewData); err != nil {
		p.logger().Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RedirectWithFlash queues a flash message and redirects with 303.
func (p Responder) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Error renders the not-found page for ErrNotFound and the generic error page
// for everything else.
func (p Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		p.Page(w, r, "pages/error.html", "Not Found", ErrorPage{Status: http.StatusNotFound, Message: "The requested record was not found."}, http.StatusNotFound)
		return
	}
	p.logger().Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	p.Page(w, r, "pages/error.html", "Error", ErrorPage{Status: http.StatusInternalServerError, Message: shared.UserSafeMessage(err)}, http.StatusInternalServerError)
}

// ErrorPage feeds pages/error.html.
type ErrorPage struct {
	Status  int
	Message string
}

func (p Responder) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
