package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	analytichttp "github.com/stockroom-ims/stockroom/internal/analytics/http"
	"github.com/stockroom-ims/stockroom/internal/auth"
	"github.com/stockroom-ims/stockroom/internal/inventory"
	"github.com/stockroom-ims/stockroom/internal/locations"
	"github.com/stockroom-ims/stockroom/internal/masterdata/categories"
	"github.com/stockroom-ims/stockroom/internal/masterdata/products"
	"github.com/stockroom-ims/stockroom/internal/masterdata/reasons"
	"github.com/stockroom-ims/stockroom/internal/masterdata/suppliers"
	"github.com/stockroom-ims/stockroom/internal/observability"
	"github.com/stockroom-ims/stockroom/internal/platform/httpx"
	"github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/jobs"
	"github.com/stockroom-ims/stockroom/web"
)

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	HealthChecks   map[string]HealthCheck

	AuthHandler      *auth.Handler
	DashboardHandler *analytichttp.Handler
	CategoryHandler  *categories.Handler
	SupplierHandler  *suppliers.Handler
	ProductHandler   *products.Handler
	ReasonHandler    *reasons.Handler
	StockHandler     *inventory.Handler
	LocationHandler  *locations.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Stockroom defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(params.HealthChecks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
		if params.CategoryHandler != nil {
			r.Route("/categories", params.CategoryHandler.MountRoutes)
		}
		if params.SupplierHandler != nil {
			r.Route("/suppliers", params.SupplierHandler.MountRoutes)
		}
		if params.ProductHandler != nil {
			r.Route("/products", params.ProductHandler.MountRoutes)
		}
		if params.ReasonHandler != nil {
			r.Route("/reasons", params.ReasonHandler.MountRoutes)
		}
		if params.StockHandler != nil {
			r.Route("/stock", params.StockHandler.MountRoutes)
		}
		if params.LocationHandler != nil {
			r.Route("/api/locations", params.LocationHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler runs every probe concurrently and reports 503 when any fails.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		names := make([]string, 0, len(checks))
		results := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
			results = append(results, "ok")
		}
		var g errgroup.Group
		for i, name := range names {
			check := checks[name]
			g.Go(func() error {
				if err := check(ctx); err != nil {
					results[i] = err.Error()
					return err
				}
				return nil
			})
		}
		status := healthStatus{Status: "ok", Checks: make(map[string]string, len(names))}
		code := http.StatusOK
		if err := g.Wait(); err != nil {
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		for i, name := range names {
			status.Checks[name] = results[i]
		}
		httpx.JSON(w, code, status)
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
