package suppliers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/internal/view"
)

// Handler serves the supplier pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   view.Responder
}

func NewHandler(logger *slog.Logger, service *Service, pages view.Responder) *Handler {
	return &Handler{logger: logger, service: service, pages: pages}
}

// MountRoutes registers supplier routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
}

type listPage struct {
	Suppliers  []Supplier
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
	h.pages.Page(w, r, "pages/suppliers_list.html", "Suppliers", listPage{
		Suppliers:  items,
		Filters:    filters,
		Pagination: internalShared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, "pages/supplier_form.html", "New Supplier", formPage{}, http.StatusOK)
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
	h.logger.Info("supplier created", slog.String("supplier_id", created.ID), slog.String("actor", actor.Label()))
	h.pages.RedirectWithFlash(w, r, "/suppliers", "success", "Supplier created successfully.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	sup, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Page(w, r, "pages/supplier_form.html", "Edit Supplier", formPage{ID: sup.ID, Form: FromSupplier(sup)}, http.StatusOK)
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
	h.pages.RedirectWithFlash(w, r, "/suppliers", "success", "Supplier updated successfully.")
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, _ := internalShared.ActorFromContext(r.Context())
	sup, err := h.service.ToggleActive(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	state := "deactivated"
	if sup.IsActive {
		state = "activated"
	}
	h.pages.RedirectWithFlash(w, r, "/suppliers", "success", "Supplier "+sup.Name+" "+state+".")
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, page formPage, err error) {
	fields, ok := internalShared.FormErrors(err)
	if !ok {
		h.pages.Error(w, r, err)
		return
	}
	page.Errors = fields
	title := "New Supplier"
	if page.ID != "" {
		title = "Edit Supplier"
	}
	h.pages.Page(w, r, "pages/supplier_form.html", title, page, http.StatusUnprocessableEntity)
}

// readForm collects the repeated contact rows, dropping rows left blank so
// error keys line up with the rows rendered back.
func readForm(r *http.Request) Input {
	in := Input{
		Name:              r.PostFormValue("name"),
		CompanyContactNum: r.PostFormValue("companyContactNum"),
		Address: Address{
			Region:        r.PostFormValue("address.region"),
			Province:      r.PostFormValue("address.province"),
			City:          r.PostFormValue("address.city"),
			Barangay:      r.PostFormValue("address.barangay"),
			StreetAddress: r.PostFormValue("address.streetAddress"),
			PostalCode:    r.PostFormValue("address.postalCode"),
		},
	}
	names := r.PostForm["contactName"]
	emails := r.PostForm["contactEmail"]
	phones := r.PostForm["contactPhone"]
	at := func(values []string, i int) string {
		if i < len(values) {
			return strings.TrimSpace(values[i])
		}
		return ""
	}
	rows := max(len(names), len(emails), len(phones))
	for i := 0; i < rows; i++ {
		in.ContactPersons = append(in.ContactPersons, ContactPerson{Name: at(names, i), Email: at(emails, i), Phone: at(phones, i)})
	}
	return in
}
