package analytichttp

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-ims/stockroom/internal/analytics"
	"github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/internal/view"
)

type stubService struct {
	snap  analytics.Snapshot
	err   error
	calls int
}

func (s *stubService) Snapshot(context.Context) (analytics.Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

func sampleSnapshot() analytics.Snapshot {
	return analytics.Snapshot{
		TotalProducts:           4,
		CategoryCount:           3,
		CategoriesInUse:         2,
		SupplierCount:           2,
		LowStockCount:           1,
		LowStockThreshold:       10,
		EstimatedInventoryValue: decimal.RequireFromString("1250.50"),
		TotalStockOutThisMonth:  7,
		TopProducts:             []analytics.ProductOutflow{{ProductID: "p1", Name: "Widget", Quantity: 5}},
		ReasonBreakdown:         []analytics.ReasonCount{{Reason: "Sale", Count: 2}},
		OutflowTrend: []analytics.MonthOutflow{
			{Month: "2024-05", Quantity: 3},
			{Month: "2024-06", Quantity: 7},
		},
		GeneratedAt: time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
	}
}

func newTestHandler(svc SnapshotService) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, svc, view.Responder{Logger: logger})
}

func TestCSVExportStreamsSnapshot(t *testing.T) {
	svc := &stubService{snap: sampleSnapshot()}
	router := chi.NewRouter()
	newTestHandler(svc).MountRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "stockroom-dashboard-2024-06-15.csv")

	records, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Contains(t, rr.Body.String(), "Widget")
	assert.Equal(t, 1, svc.calls)
}

func TestCSVExportFailure(t *testing.T) {
	router := chi.NewRouter()
	newTestHandler(&stubService{err: errors.New("db down")}).MountRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestChartsRenderBothSeries(t *testing.T) {
	h := newTestHandler(&stubService{})
	trend, top := h.charts(sampleSnapshot())
	assert.Contains(t, string(trend), "<svg")
	assert.Contains(t, string(trend), "2024-06")
	assert.Contains(t, string(top), "Widget")
}

func TestChartsEmptySnapshot(t *testing.T) {
	h := newTestHandler(&stubService{})
	trend, top := h.charts(analytics.Snapshot{})
	assert.Empty(t, trend)
	assert.Empty(t, top)
}

func TestRateLimitKeyPrefersSessionUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	key, err := rateLimitKey(req)
	require.NoError(t, err)
	assert.Equal(t, "ip:10.0.0.7", key)

	sess := &shared.Session{}
	sess.SetUser(shared.SessionUser{ID: "u42", Username: "ana"})
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	key, err = rateLimitKey(req)
	require.NoError(t, err)
	assert.Equal(t, "user:u42", key)
}
