package analytichttp

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/stockroom-ims/stockroom/internal/analytics"
	"github.com/stockroom-ims/stockroom/internal/analytics/export"
	"github.com/stockroom-ims/stockroom/internal/analytics/svg"
	"github.com/stockroom-ims/stockroom/internal/view"
)

const requestTimeout = 5 * time.Second

// SnapshotService produces the dashboard summary.
type SnapshotService interface {
	Snapshot(ctx context.Context) (analytics.Snapshot, error)
}

// Handler serves the inventory dashboard and its CSV export.
type Handler struct {
	logger  *slog.Logger
	service SnapshotService
	pages   view.Responder
	csvPool sync.Pool
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service SnapshotService, pages view.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, service: service, pages: pages}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

type dashboardPage struct {
	Snapshot        analytics.Snapshot
	TrendChart      template.HTML
	TopProductChart template.HTML
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := h.service.Snapshot(ctx)
	if err != nil {
		h.pages.Error(w, r, fmt.Errorf("load dashboard: %w", err))
		return
	}
	page := dashboardPage{Snapshot: snap}
	page.TrendChart, page.TopProductChart = h.charts(snap)
	h.pages.Page(w, r, "pages/dashboard.html", "Dashboard", page, http.StatusOK)
}

// charts renders both dashboard charts. A chart that cannot be drawn is
// left empty and the template shows its placeholder.
func (h *Handler) charts(snap analytics.Snapshot) (template.HTML, template.HTML) {
	var trend, top template.HTML
	if len(snap.OutflowTrend) > 0 {
		values := make([]float64, len(snap.OutflowTrend))
		labels := make([]string, len(snap.OutflowTrend))
		for i, m := range snap.OutflowTrend {
			values[i] = float64(m.Quantity)
			labels[i] = m.Month
		}
		out, err := svg.Bars(0, 0, values, labels, svg.BarOpts{
			Title:       "Stock out by month",
			Description: "Units removed from stock over the last six months",
		})
		if err != nil {
			h.logger.Warn("render trend chart", slog.Any("error", err))
		}
		trend = out
	}
	if len(snap.TopProducts) > 0 {
		values := make([]float64, len(snap.TopProducts))
		labels := make([]string, len(snap.TopProducts))
		for i, p := range snap.TopProducts {
			values[i] = float64(p.Quantity)
			labels[i] = p.Name
		}
		out, err := svg.Bars(0, 0, values, labels, svg.BarOpts{
			Title:       "Top selling products",
			Description: "Units sold per product",
			Color:       "#16a34a",
		})
		if err != nil {
			h.logger.Warn("render top products chart", slog.Any("error", err))
		}
		top = out
	}
	return trend, top
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := h.service.Snapshot(ctx)
	if err != nil {
		h.logger.Error("load dashboard for export", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteSnapshotCSV(buf, snap); err != nil {
		h.logger.Error("write dashboard csv", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("stockroom-dashboard-%s.csv", snap.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("stream csv", slog.Any("error", err))
	}
}
