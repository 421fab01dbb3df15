package products

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/stockroom-ims/stockroom/internal/masterdata/categories"
	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	"github.com/stockroom-ims/stockroom/internal/masterdata/suppliers"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/internal/view"
)

// Handler serves the product pages.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	categories *categories.Service
	suppliers  *suppliers.Service
	pages      view.Responder
}

func NewHandler(
	logger *slog.Logger,
	service *Service,
	categoryService *categories.Service,
	supplierService *suppliers.Service,
	pages view.Responder,
) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		categories: categoryService,
		suppliers:  supplierService,
		pages:      pages,
	}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
}

type options struct {
	Categories []categories.Category
	Suppliers  []suppliers.Supplier
}

type listPage struct {
	Products   []Product
	Filters    shared.ListFilters
	Pagination internalShared.Pagination
	options
}

type formPage struct {
	ID       string
	Quantity int
	Form     Input
	Errors   internalShared.FieldErrors
	options
}

func (h *Handler) loadOptions(ctx context.Context) (options, error) {
	var opts options
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opts.Categories, err = h.categories.Active(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Suppliers, err = h.suppliers.Active(ctx)
		return err
	})
	return opts, g.Wait()
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	opts, err := h.loadOptions(r.Context())
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Page(w, r, "pages/products_list.html", "Products", listPage{
		Products:   items,
		Filters:    filters,
		Pagination: internalShared.NewPagination(filters.Page, filters.Limit, total),
		options:    opts,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, formPage{Form: Input{Quantity: "0"}}, http.StatusOK)
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
	h.logger.Info("product created",
		slog.String("product_id", created.ID),
		slog.Int("quantity", created.Quantity),
		slog.String("actor", actor.Label()))
	h.pages.RedirectWithFlash(w, r, "/products", "success", "Product created successfully.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.renderForm(w, r, formPage{ID: p.ID, Quantity: p.Quantity, Form: FromProduct(p)}, http.StatusOK)
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
	h.pages.RedirectWithFlash(w, r, "/products", "success", "Product updated successfully.")
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, _ := internalShared.ActorFromContext(r.Context())
	p, err := h.service.ToggleActive(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	state := "deactivated"
	if p.IsActive {
		state = "activated"
	}
	h.pages.RedirectWithFlash(w, r, "/products", "success", "Product "+p.Name+" "+state+".")
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, page formPage, err error) {
	fields, ok := internalShared.FormErrors(err)
	if !ok {
		h.pages.Error(w, r, err)
		return
	}
	page.Errors = fields
	if page.ID != "" {
		if p, err := h.service.Get(r.Context(), page.ID); err == nil {
			page.Quantity = p.Quantity
		}
	}
	h.renderForm(w, r, page, http.StatusUnprocessableEntity)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, page formPage, status int) {
	opts, err := h.loadOptions(r.Context())
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	page.options = opts
	title := "New Product"
	if page.ID != "" {
		title = "Edit Product"
	}
	h.pages.Page(w, r, "pages/product_form.html", title, page, status)
}

func readForm(r *http.Request) Input {
	return Input{
		Name:       r.PostFormValue("name"),
		Quantity:   r.PostFormValue("quantity"),
		Price:      r.PostFormValue("price"),
		CategoryID: r.PostFormValue("categoryId"),
		SupplierID: r.PostFormValue("supplierId"),
		IsActive:   r.PostFormValue("isActive") != "",
	}
}
