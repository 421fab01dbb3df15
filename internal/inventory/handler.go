package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-ims/stockroom/internal/masterdata/products"
	"github.com/stockroom-ims/stockroom/internal/masterdata/reasons"
	"github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/internal/view"
)

// ProductLister feeds the product dropdown of the stock forms.
type ProductLister interface {
	Active(ctx context.Context) ([]products.Product, error)
}

// Handler wires HTTP endpoints for the stock ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	products ProductLister
	pages    view.Responder
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service, productLister ProductLister, pages view.Responder) *Handler {
	return &Handler{logger: logger, service: service, products: productLister, pages: pages}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/in", h.showForm(DirectionIn))
	r.Post("/in", h.handleMove(DirectionIn))
	r.Get("/out", h.showForm(DirectionOut))
	r.Post("/out", h.handleMove(DirectionOut))
	r.Get("/history/{productID}", h.handleHistory)
	r.Get("/reconcile", h.handleReconcile)
}

type stockForm struct {
	ProductID string
	ReasonID  string
	Quantity  string
	Remarks   string
}

type stockPage struct {
	Direction Direction
	Form      stockForm
	Products  []products.Product
	Reasons   []reasons.Reason
	Errors    shared.FieldErrors
}

type historyPage struct {
	Product ProductState
	Entries []HistoryEntry
}

type reconcilePage struct {
	Discrepancies []Discrepancy
}

func (h *Handler) showForm(dir Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := stockForm{ProductID: r.URL.Query().Get("product")}
		h.renderForm(w, r, stockPage{Direction: dir, Form: form}, http.StatusOK)
	}
}

func (h *Handler) handleMove(dir Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		form := stockForm{
			ProductID: strings.TrimSpace(r.PostFormValue("productId")),
			ReasonID:  strings.TrimSpace(r.PostFormValue("reasonId")),
			Quantity:  strings.TrimSpace(r.PostFormValue("quantity")),
			Remarks:   strings.TrimSpace(r.PostFormValue("remarks")),
		}
		page := stockPage{Direction: dir, Form: form}
		// Out of range values fall through so the service reports the limit.
		qty, err := strconv.Atoi(form.Quantity)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			page.Errors = shared.FieldErrors{"quantity": (&QuantityError{Direction: dir}).Error()}
			h.renderForm(w, r, page, http.StatusUnprocessableEntity)
			return
		}

		actor, _ := shared.ActorFromContext(r.Context())
		input := StockInput{ProductID: form.ProductID, ReasonID: form.ReasonID, Quantity: qty, Remarks: form.Remarks}
		var res Result
		if dir == DirectionIn {
			res, err = h.service.StockIn(r.Context(), actor, input)
		} else {
			res, err = h.service.StockOut(r.Context(), actor, input)
		}
		if err != nil {
			fields, status, ok := moveErrors(err)
			if !ok {
				h.pages.Error(w, r, err)
				return
			}
			page.Errors = fields
			h.renderForm(w, r, page, status)
			return
		}

		h.pages.RedirectWithFlash(w, r, movedLocation, "success", movedMessage(dir, qty, res.ProductName))
	}
}

// movedLocation is where a successful stock in or out lands, so the new
// quantity is visible in the product list.
const movedLocation = "/products"

func movedMessage(dir Direction, qty int, product string) string {
	if dir == DirectionOut {
		return fmt.Sprintf("Successfully removed %d of %s from stock.", qty, product)
	}
	return fmt.Sprintf("Successfully added %d of %s to stock.", qty, product)
}

// moveErrors maps ledger failures onto form fields.
func moveErrors(err error) (shared.FieldErrors, int, bool) {
	var insufficient *InsufficientStockError
	var quantity *QuantityError
	var capacity *CapacityError
	switch {
	case errors.As(err, &insufficient):
		return shared.FieldErrors{"quantity": insufficient.Error()}, http.StatusUnprocessableEntity, true
	case errors.As(err, &quantity):
		return shared.FieldErrors{"quantity": quantity.Error()}, http.StatusUnprocessableEntity, true
	case errors.As(err, &capacity):
		return shared.FieldErrors{"quantity": capacity.Error()}, http.StatusUnprocessableEntity, true
	case errors.Is(err, ErrProductNotFound):
		return shared.FieldErrors{"productId": ErrProductNotFound.Error()}, http.StatusUnprocessableEntity, true
	case errors.Is(err, ErrInvalidReason):
		return shared.FieldErrors{"reasonId": "Select a reason that applies to this movement."}, http.StatusUnprocessableEntity, true
	case errors.Is(err, ErrConcurrentUpdate):
		return shared.FieldErrors{"general": "The product was updated by someone else. Please try again."}, http.StatusConflict, true
	}
	return nil, 0, false
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, page stockPage, status int) {
	ctx := r.Context()
	items, err := h.products.Active(ctx)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	eligible, err := h.service.EligibleReasons(ctx, page.Direction)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	page.Products, page.Reasons = items, eligible
	title := "Stock In"
	if page.Direction == DirectionOut {
		title = "Stock Out"
	}
	h.pages.Page(w, r, "pages/stock_form.html", title, page, status)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, err := h.service.Product(ctx, chi.URLParam(r, "productID"))
	if errors.Is(err, ErrProductNotFound) {
		h.pages.Error(w, r, shared.ErrNotFound)
		return
	}
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	entries, err := h.service.History(ctx, product.ID)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Page(w, r, "pages/stock_history.html", "Stock History", historyPage{Product: product, Entries: entries}, http.StatusOK)
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	drift, err := h.service.ReconcileAll(r.Context())
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	if len(drift) > 0 {
		h.logger.Warn("ledger drift detected", slog.Int("products", len(drift)))
	}
	h.pages.Page(w, r, "pages/stock_reconcile.html", "Ledger Reconciliation", reconcilePage{Discrepancies: drift}, http.StatusOK)
}
