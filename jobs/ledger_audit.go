package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockroom-ims/stockroom/internal/inventory"
	jobmetrics "github.com/stockroom-ims/stockroom/internal/jobs"
)

// Reconciler reports products whose cached quantity drifted from the ledger.
type Reconciler interface {
	Reconcile(ctx context.Context, productID string) ([]inventory.Discrepancy, error)
	ReconcileAll(ctx context.Context) ([]inventory.Discrepancy, error)
}

// LedgerAuditJob runs the reconciliation report in the background. It never
// writes.
type LedgerAuditJob struct {
	Reconciler Reconciler
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewLedgerAuditJob initialises the audit handler.
func NewLedgerAuditJob(reconciler Reconciler, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerAuditJob {
	return &LedgerAuditJob{Reconciler: reconciler, Logger: logger, Metrics: metrics}
}

// Handle executes one audit.
func (j *LedgerAuditJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reconciler == nil {
		return errors.New("ledger audit: handler not configured")
	}
	var payload LedgerAuditPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("ledger audit payload: %w", asynq.SkipRetry)
		}
	}

	tracker := j.Metrics.Track("ledger_audit")
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("job", TaskLedgerAudit))
	if payload.ProductID != "" {
		logger = logger.With(slog.String("product_id", payload.ProductID))
	}
	start := time.Now()

	found, err := j.run(ctx, payload.ProductID)
	if err != nil {
		logger.Error("ledger audit failed", slog.Any("error", err))
		return err
	}
	for _, d := range found {
		logger.Warn("ledger discrepancy",
			slog.String("product_id", d.ProductID),
			slog.String("product", d.Name),
			slog.Int("cached", d.Cached),
			slog.Int("ledger", d.Ledger),
			slog.Int("drift", d.Drift()),
		)
	}
	if payload.ProductID == "" {
		j.Metrics.SetLedgerDiscrepancies(len(found))
	}
	logger.Info("ledger audit completed",
		slog.Int("discrepancies", len(found)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *LedgerAuditJob) run(ctx context.Context, productID string) ([]inventory.Discrepancy, error) {
	if productID == "" {
		return j.Reconciler.ReconcileAll(ctx)
	}
	found, err := j.Reconciler.Reconcile(ctx, productID)
	if errors.Is(err, inventory.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return found, err
}

func (j *LedgerAuditJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
