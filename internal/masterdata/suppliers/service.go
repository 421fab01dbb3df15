package suppliers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

// Service applies catalog rules to suppliers.
type Service struct {
	repo     Repository
	now      internalShared.Clock
	validate *validator.Validate
}

// NewService wires a Repository. A nil clock uses UTC wall time.
func NewService(repo Repository, clock internalShared.Clock) *Service {
	if clock == nil {
		clock = internalShared.UTCNow
	}
	return &Service{repo: repo, now: clock, validate: newValidator()}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

// Active lists suppliers offered in product forms.
func (s *Service) Active(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Supplier, error) {
	id, err := shared.ParseID(id)
	if err != nil {
		return Supplier{}, err
	}
	return s.repo.Get(ctx, id)
}

// Create validates the supplier with its address and contacts as one unit.
func (s *Service) Create(ctx context.Context, actor internalShared.Actor, in Input) (Supplier, error) {
	in = in.trimmed()
	if err := validate(s.validate, in); err != nil {
		return Supplier{}, err
	}
	if err := s.ensureUnique(ctx, in.Name, ""); err != nil {
		return Supplier{}, err
	}
	sup := Supplier{
		ID:       uuid.NewString(),
		IsActive: true,
		Audit:    internalShared.NewAudit(actor, s.now()),
	}
	apply(&sup, in)
	if err := s.repo.Create(ctx, sup); err != nil {
		return Supplier{}, err
	}
	return sup, nil
}

func (s *Service) Update(ctx context.Context, actor internalShared.Actor, id string, in Input) (Supplier, error) {
	sup, err := s.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	in = in.trimmed()
	if err := validate(s.validate, in); err != nil {
		return Supplier{}, err
	}
	if err := s.ensureUnique(ctx, in.Name, sup.ID); err != nil {
		return Supplier{}, err
	}
	apply(&sup, in)
	sup.Touch(actor, s.now())
	if err := s.repo.Update(ctx, sup); err != nil {
		return Supplier{}, err
	}
	return sup, nil
}

// ToggleActive flips the active flag.
func (s *Service) ToggleActive(ctx context.Context, actor internalShared.Actor, id string) (Supplier, error) {
	sup, err := s.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	sup.IsActive = !sup.IsActive
	sup.Touch(actor, s.now())
	if err := s.repo.Update(ctx, sup); err != nil {
		return Supplier{}, err
	}
	return sup, nil
}

func (s *Service) ensureUnique(ctx context.Context, name, excludeID string) error {
	taken, err := s.repo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &internalShared.DuplicateNameError{Kind: "supplier"}
	}
	return nil
}

func apply(sup *Supplier, in Input) {
	sup.Name = in.Name
	sup.CompanyContactNum = in.CompanyContactNum
	sup.Address = in.Address
	sup.ContactPersons = in.filledContacts()
}
