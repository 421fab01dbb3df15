package products

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

// Transactor runs fn in one database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OpeningPoster records the opening ledger entry of a new product.
type OpeningPoster interface {
	PostOpening(ctx context.Context, actor internalShared.Actor, productID string, qty int) error
}

// Service applies catalog rules to products.
type Service struct {
	repo   Repository
	tx     Transactor
	ledger OpeningPoster
	now    internalShared.Clock
}

// NewService wires a Repository. A nil clock uses UTC wall time.
func NewService(repo Repository, tx Transactor, ledger OpeningPoster, clock internalShared.Clock) *Service {
	if clock == nil {
		clock = internalShared.UTCNow
	}
	return &Service{repo: repo, tx: tx, ledger: ledger, now: clock}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// Active lists products offered in stock forms.
func (s *Service) Active(ctx context.Context) ([]Product, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	id, err := shared.ParseID(id)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// Create inserts the product and, when it starts with stock, its opening
// ledger entry in the same transaction.
func (s *Service) Create(ctx context.Context, actor internalShared.Actor, in Input) (Product, error) {
	in = in.trimmed()
	values, err := validate(in, true)
	if err != nil {
		return Product{}, err
	}
	if err := s.ensureUnique(ctx, in.Name, ""); err != nil {
		return Product{}, err
	}
	p := Product{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Quantity:   values.quantity,
		Price:      values.price,
		CategoryID: in.CategoryID,
		SupplierID: in.SupplierID,
		IsActive:   true,
		Version:    1,
		Audit:      internalShared.NewAudit(actor, s.now()),
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		if p.Quantity > 0 {
			return s.ledger.PostOpening(ctx, actor, p.ID, p.Quantity)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// Update edits name, price, category, supplier and the active flag.
func (s *Service) Update(ctx context.Context, actor internalShared.Actor, id string, in Input) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	in = in.trimmed()
	values, err := validate(in, false)
	if err != nil {
		return Product{}, err
	}
	if err := s.ensureUnique(ctx, in.Name, p.ID); err != nil {
		return Product{}, err
	}
	p.Name = in.Name
	p.Price = values.price
	p.CategoryID = in.CategoryID
	p.SupplierID = in.SupplierID
	p.IsActive = in.IsActive
	p.Touch(actor, s.now())
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ToggleActive flips the active flag.
func (s *Service) ToggleActive(ctx context.Context, actor internalShared.Actor, id string) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.IsActive = !p.IsActive
	p.Touch(actor, s.now())
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) ensureUnique(ctx context.Context, name, excludeID string) error {
	taken, err := s.repo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &internalShared.DuplicateNameError{Kind: "product"}
	}
	return nil
}
