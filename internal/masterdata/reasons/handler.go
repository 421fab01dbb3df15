package reasons

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/internal/view"
)

// Handler serves the reason pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   view.Responder
}

func NewHandler(logger *slog.Logger, service *Service, pages view.Responder) *Handler {
	return &Handler{logger: logger, service: service, pages: pages}
}

// MountRoutes registers reason routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/delete", h.Delete)
}

type listPage struct {
	Reasons []Reason
	Search  string
}

type formPage struct {
	ID     string
	Form   Input
	Types  []Type
	Errors internalShared.FieldErrors
}

var allTypes = []Type{TypeIn, TypeOut, TypeBoth}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	items, err := h.service.List(r.Context(), search)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Page(w, r, "pages/reasons_list.html", "Reasons", listPage{Reasons: items, Search: search}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, "pages/reason_form.html", "New Reason", formPage{Types: allTypes}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := readForm(r)
	if _, err := h.service.Create(r.Context(), in); err != nil {
		h.formError(w, r, formPage{Form: in}, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/reasons", "success", "Reason created successfully.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	reason, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Page(w, r, "pages/reason_form.html", "Edit Reason", formPage{
		ID:    reason.ID,
		Form:  Input{Name: reason.Name, Description: reason.Description, Type: string(reason.Type)},
		Types: allTypes,
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	in := readForm(r)
	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		h.formError(w, r, formPage{ID: id, Form: in}, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/reasons", "success", "Reason updated successfully.")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/reasons", "success", "Reason deleted.")
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, page formPage, err error) {
	fields, ok := internalShared.FormErrors(err)
	if !ok {
		h.pages.Error(w, r, err)
		return
	}
	page.Errors = fields
	page.Types = allTypes
	title := "New Reason"
	if page.ID != "" {
		title = "Edit Reason"
	}
	h.pages.Page(w, r, "pages/reason_form.html", title, page, http.StatusUnprocessableEntity)
}

func readForm(r *http.Request) Input {
	return Input{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Type:        r.PostFormValue("type"),
	}
}
