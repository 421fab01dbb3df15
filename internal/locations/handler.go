package locations

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-ims/stockroom/internal/platform/httpx"
)

// Handler serves the address cascade used by the supplier form.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

// NewHandler constructs the locations API handler.
func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers the JSON endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/regions", h.regions)
	r.Get("/provinces/{regionID}", h.provinces)
	r.Get("/municipalities/{provinceID}", h.municipalities)
	r.Get("/barangays/{municipalityID}", h.barangays)
}

func (h *Handler) regions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.Regions(r.Context())
	h.respond(w, rows, err)
}

func (h *Handler) provinces(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "regionID", "Invalid Region Code")
	if !ok {
		return
	}
	rows, err := h.repo.Provinces(r.Context(), id)
	h.respond(w, rows, err)
}

func (h *Handler) municipalities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "provinceID", "Invalid Province Code")
	if !ok {
		return
	}
	rows, err := h.repo.Municipalities(r.Context(), id)
	h.respond(w, rows, err)
}

func (h *Handler) barangays(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "municipalityID", "Invalid City Code")
	if !ok {
		return
	}
	rows, err := h.repo.Barangays(r.Context(), id)
	h.respond(w, rows, err)
}

func pathInt(w http.ResponseWriter, r *http.Request, param, message string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, message, "")
		return 0, false
	}
	return id, true
}

func (h *Handler) respond(w http.ResponseWriter, rows any, err error) {
	if err != nil {
		h.logger.Error("load locations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
