package categories

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/internal/view"
)

// Handler serves the category pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   view.Responder
}

func NewHandler(logger *slog.Logger, service *Service, pages view.Responder) *Handler {
	return &Handler{logger: logger, service: service, pages: pages}
}

// MountRoutes registers category routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
}

type listPage struct {
	Categories []Category
	Filters    shared.ListFilters
	Pagination internalShared.Pagination
}

type formPage struct {
	ID     string
	Form   Input
	Errors internalShared.FieldErrors
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Page(w, r, "pages/categories_list.html", "Categories", listPage{
		Categories: items,
		Filters:    filters,
		Pagination: internalShared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, "pages/category_form.html", "New Category", formPage{}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := readForm(r)
	actor, _ := internalShared.ActorFromContext(r.Context())
	created, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		h.formError(w, r, formPage{Form: in}, err)
		return
	}
	h.logger.Info("category created", slog.String("category_id", created.ID), slog.String("actor", actor.Label()))
	h.pages.RedirectWithFlash(w, r, "/categories", "success", "Category created successfully.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Page(w, r, "pages/category_form.html", "Edit Category", formPage{
		ID:   c.ID,
		Form: Input{Name: c.Name, Description: c.Description},
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	in := readForm(r)
	actor, _ := internalShared.ActorFromContext(r.Context())
	if _, err := h.service.Update(r.Context(), actor, id, in); err != nil {
		h.formError(w, r, formPage{ID: id, Form: in}, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/categories", "success", "Category updated successfully.")
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, _ := internalShared.ActorFromContext(r.Context())
	c, err := h.service.ToggleActive(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	state := "deactivated"
	if c.IsActive {
		state = "activated"
	}
	h.pages.RedirectWithFlash(w, r, "/categories", "success", "Category "+c.Name+" "+state+".")
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, page formPage, err error) {
	fields, ok := internalShared.FormErrors(err)
	if !ok {
		h.pages.Error(w, r, err)
		return
	}
	page.Errors = fields
	title := "New Category"
	if page.ID != "" {
		title = "Edit Category"
	}
	h.pages.Page(w, r, "pages/category_form.html", title, page, http.StatusUnprocessableEntity)
}

func readForm(r *http.Request) Input {
	return Input{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
}
