package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/internal/view"
)

const (
	invalidCredentialsMessage = "Invalid username or password"
	registrationFailedMessage = "An error occurred while creating the account. Please try again."
	usernameTakenMessage      = "Username already exists."
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	pages     view.Responder
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pages view.Responder, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		pages:     pages,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginPage struct {
	Form   loginForm
	Errors shared.FieldErrors
}

type registerForm struct {
	FirstName string
	LastName  string
	Username  string
}

type registerPage struct {
	Form   registerForm
	Errors shared.FieldErrors
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, "pages/login.html", "Login", loginPage{}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	errs := shared.FieldErrors{}
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				errs.Add(strings.ToLower(fieldErr.Field()), "The "+fieldErr.Field()+" field is required.")
			}
		}
	}

	if len(errs) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
		switch {
		case err == nil:
			h.signIn(w, r, user)
			return
		case errors.Is(err, shared.ErrInvalidCredentials):
			errs.Add("general", invalidCredentialsMessage)
		default:
			h.pages.Error(w, r, err)
			return
		}
	}

	form.Password = ""
	h.pages.Page(w, r, "pages/login.html", "Login", loginPage{Form: form, Errors: errs}, http.StatusBadRequest)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user User) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := h.sessions.Renew(r.Context(), sess); err != nil {
		h.logger.Error("renew session", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SetUser(SessionUser(user))
	h.logger.Info("user signed in", slog.String("username", user.Username))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, "pages/register.html", "Register", registerPage{}, http.StatusOK)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := Registration{
		FirstName:       r.PostFormValue("firstName"),
		LastName:        r.PostFormValue("lastName"),
		Username:        r.PostFormValue("username"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	_, err := h.service.Register(r.Context(), in)
	if err == nil {
		h.pages.RedirectWithFlash(w, r, "/auth/login", "success", "Account created. Please sign in.")
		return
	}

	in = in.trimmed()
	page := registerPage{Form: registerForm{FirstName: in.FirstName, LastName: in.LastName, Username: in.Username}}
	var fe shared.FieldErrors
	switch {
	case errors.As(err, &fe):
		page.Errors = fe
	case errors.Is(err, ErrUsernameTaken):
		page.Errors = shared.FieldErrors{"username": usernameTakenMessage}
	default:
		h.logger.Error("register account", slog.String("username", in.Username), slog.Any("error", err))
		page.Errors = shared.FieldErrors{"general": registrationFailedMessage}
	}
	h.pages.Page(w, r, "pages/register.html", "Register", page, http.StatusUnprocessableEntity)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}
