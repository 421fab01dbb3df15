package inventory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/stockroom-ims/stockroom/internal/masterdata/reasons"
	"github.com/stockroom-ims/stockroom/internal/platform/db"
	"github.com/stockroom-ims/stockroom/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetProduct(ctx context.Context, id string) (ProductState, error)
	History(ctx context.Context, productID string) ([]HistoryEntry, error)
	Discrepancies(ctx context.Context, productID string) ([]Discrepancy, error)
}

// ReasonCatalog resolves reasons. Movements only keep the id.
type ReasonCatalog interface {
	ForDirection(ctx context.Context, dir reasons.Type) ([]reasons.Reason, error)
	Lookup(ctx context.Context, id string) (reasons.Reason, bool, error)
	Ensure(ctx context.Context, name, description string, typ reasons.Type) (reasons.Reason, error)
}

// MovementRecorder counts posted movements.
type MovementRecorder interface {
	ObserveStockMovement(direction string)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	MaxAttempts  uint
	RetryInitial time.Duration
	RetryMax     time.Duration
	Clock        shared.Clock
	Logger       *slog.Logger
	Metrics      MovementRecorder
}

// Service is the only writer of stock movements and, after creation, of
// product quantities.
type Service struct {
	repo     RepositoryPort
	reasons  ReasonCatalog
	cfg      ServiceConfig
	now      shared.Clock
	logger   *slog.Logger
	recorder MovementRecorder
}

// NewService builds Service.
func NewService(repo RepositoryPort, reasonCatalog ReasonCatalog, cfg ServiceConfig) *Service {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = 25 * time.Millisecond
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 250 * time.Millisecond
	}
	s := &Service{repo: repo, reasons: reasonCatalog, cfg: cfg, now: cfg.Clock, logger: cfg.Logger, recorder: cfg.Metrics}
	if s.now == nil {
		s.now = shared.UTCNow
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// StockIn adds stock.
func (s *Service) StockIn(ctx context.Context, actor shared.Actor, in StockInput) (Result, error) {
	return s.move(ctx, actor, DirectionIn, in)
}

// StockOut removes stock. It fails with *InsufficientStockError when the
// product holds less than requested.
func (s *Service) StockOut(ctx context.Context, actor shared.Actor, in StockInput) (Result, error) {
	return s.move(ctx, actor, DirectionOut, in)
}

// EligibleReasons lists the reasons offered for dir.
func (s *Service) EligibleReasons(ctx context.Context, dir Direction) ([]reasons.Reason, error) {
	return s.reasons.ForDirection(ctx, reasons.Type(dir))
}

// Product returns the ledger view of a product.
func (s *Service) Product(ctx context.Context, id string) (ProductState, error) {
	id, ok := parseID(id)
	if !ok {
		return ProductState{}, ErrProductNotFound
	}
	return s.repo.GetProduct(ctx, id)
}

// History lists movements of a product, newest first.
func (s *Service) History(ctx context.Context, productID string) ([]HistoryEntry, error) {
	p, err := s.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.repo.History(ctx, p.ID)
}

// PostOpening records the opening entry of a product created with qty on
// hand. The product row already carries qty, so only the movement is written.
// It joins the transaction carried by ctx.
func (s *Service) PostOpening(ctx context.Context, actor shared.Actor, productID string, qty int) error {
	if qty <= 0 {
		return &QuantityError{Direction: DirectionIn}
	}
	reason, err := s.reasons.Ensure(ctx, OpeningReasonName, OpeningReasonDescription, reasons.TypeIn)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			return err
		}
		return tx.InsertMovement(ctx, Movement{
			ID:             uuid.NewString(),
			ProductID:      productID,
			ReasonID:       &reason.ID,
			QuantityChange: qty,
			Remarks:        OpeningRemarks,
			CreatedBy:      actor.Label(),
			CreatedAt:      s.now(),
		})
	})
	if err != nil {
		return err
	}
	s.observe(DirectionIn)
	return nil
}

// Reconcile compares one product's cached quantity with its ledger sum.
func (s *Service) Reconcile(ctx context.Context, productID string) ([]Discrepancy, error) {
	p, err := s.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.repo.Discrepancies(ctx, p.ID)
}

// ReconcileAll lists every product whose cached quantity drifted from the
// ledger. It never writes.
func (s *Service) ReconcileAll(ctx context.Context) ([]Discrepancy, error) {
	return s.repo.Discrepancies(ctx, "")
}

func (s *Service) move(ctx context.Context, actor shared.Actor, dir Direction, in StockInput) (Result, error) {
	if in.Quantity <= 0 {
		return Result{}, &QuantityError{Direction: dir}
	}
	if in.Quantity > shared.MaxQuantity {
		return Result{}, &QuantityError{Direction: dir, Limit: shared.MaxQuantity}
	}
	productID, ok := parseID(in.ProductID)
	if !ok {
		return Result{}, ErrProductNotFound
	}
	in.ProductID = productID
	reasonID, err := s.checkReason(ctx, dir, in.ReasonID)
	if err != nil {
		return Result{}, err
	}

	attempt := 0
	op := func() (Result, error) {
		attempt++
		res, err := s.post(ctx, actor, dir, in, reasonID)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrConcurrentUpdate) || db.IsSerializationFailure(err) {
			s.logger.Debug("stock movement conflict",
				slog.String("product_id", in.ProductID),
				slog.Int("attempt", attempt))
			return Result{}, ErrConcurrentUpdate
		}
		return Result{}, backoff.Permanent(err)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.RetryInitial
	bo.MaxInterval = s.cfg.RetryMax
	res, err := backoff.Retry(ctx, op, backoff.WithBackOff(bo), backoff.WithMaxTries(s.cfg.MaxAttempts))
	if err != nil {
		return Result{}, err
	}
	s.observe(dir)
	s.logger.Info("stock moved",
		slog.String("direction", string(dir)),
		slog.String("product_id", res.Movement.ProductID),
		slog.Int("quantity_change", res.Movement.QuantityChange),
		slog.Int("new_quantity", res.NewQuantity),
		slog.String("actor", actor.Label()))
	return res, nil
}

func (s *Service) post(ctx context.Context, actor shared.Actor, dir Direction, in StockInput, reasonID *string) (Result, error) {
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		delta := in.Quantity
		if dir == DirectionOut {
			if p.Quantity < in.Quantity {
				return &InsufficientStockError{Current: p.Quantity}
			}
			delta = -in.Quantity
		} else if p.Quantity > shared.MaxQuantity-in.Quantity {
			return &CapacityError{Current: p.Quantity, Limit: shared.MaxQuantity}
		}
		now := s.now()
		newQty := p.Quantity + delta
		if err := tx.UpdateQuantity(ctx, p, newQty, actor.Label(), now); err != nil {
			return err
		}
		m := Movement{
			ID:             uuid.NewString(),
			ProductID:      p.ID,
			ReasonID:       reasonID,
			QuantityChange: delta,
			Remarks:        in.Remarks,
			CreatedBy:      actor.Label(),
			CreatedAt:      now,
		}
		if err := tx.InsertMovement(ctx, m); err != nil {
			return err
		}
		res = Result{Movement: m, ProductName: p.Name, NewQuantity: newQty}
		return nil
	})
	return res, err
}

// checkReason accepts an empty reason and otherwise requires one offered
// for dir.
func (s *Service) checkReason(ctx context.Context, dir Direction, raw string) (*string, error) {
	if raw == "" {
		return nil, nil
	}
	id, ok := parseID(raw)
	if !ok {
		return nil, ErrInvalidReason
	}
	reason, found, err := s.reasons.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found || !reason.AppliesTo(reasons.Type(dir)) {
		return nil, ErrInvalidReason
	}
	return &reason.ID, nil
}

func (s *Service) observe(dir Direction) {
	if s.recorder != nil {
		s.recorder.ObserveStockMovement(string(dir))
	}
}

func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
