package reasons

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

// Service applies catalog rules to reasons.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, search string) ([]Reason, error) {
	return s.repo.List(ctx, search)
}

// ForDirection lists the reasons offered when moving stock in dir: those
// tagged dir, tagged Both, or untagged.
func (s *Service) ForDirection(ctx context.Context, dir Type) ([]Reason, error) {
	return s.repo.ForType(ctx, dir)
}

func (s *Service) Get(ctx context.Context, id string) (Reason, error) {
	id, err := shared.ParseID(id)
	if err != nil {
		return Reason{}, err
	}
	return s.repo.Get(ctx, id)
}

// Lookup resolves a reason id without failing on dangling references.
func (s *Service) Lookup(ctx context.Context, id string) (Reason, bool, error) {
	if id == "" {
		return Reason{}, false, nil
	}
	r, err := s.Get(ctx, id)
	if errors.Is(err, internalShared.ErrNotFound) {
		return Reason{}, false, nil
	}
	if err != nil {
		return Reason{}, false, err
	}
	return r, true, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Reason, error) {
	in = in.trimmed()
	typ, err := validate(in)
	if err != nil {
		return Reason{}, err
	}
	if err := s.ensureUnique(ctx, in.Name, ""); err != nil {
		return Reason{}, err
	}
	r := Reason{ID: uuid.NewString(), Name: in.Name, Description: in.Description, Type: typ}
	if err := s.repo.Create(ctx, r); err != nil {
		return Reason{}, err
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Reason, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return Reason{}, err
	}
	in = in.trimmed()
	typ, err := validate(in)
	if err != nil {
		return Reason{}, err
	}
	if err := s.ensureUnique(ctx, in.Name, r.ID); err != nil {
		return Reason{}, err
	}
	r.Name, r.Description, r.Type = in.Name, in.Description, typ
	if err := s.repo.Update(ctx, r); err != nil {
		return Reason{}, err
	}
	return r, nil
}

// Delete removes the reason. Ledger entries that cite it keep the id and
// display as Uncategorized.
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := shared.ParseID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Ensure returns the reason named name, creating it when absent. Used for
// system reasons such as Initial Stock, often inside a caller's transaction,
// so a concurrent creator never surfaces as an error.
func (s *Service) Ensure(ctx context.Context, name, description string, typ Type) (Reason, error) {
	r, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, internalShared.ErrNotFound) {
		return Reason{}, err
	}
	r = Reason{ID: uuid.NewString(), Name: name, Description: description, Type: typ}
	created, err := s.repo.CreateIfAbsent(ctx, r)
	if err != nil {
		return Reason{}, err
	}
	if !created {
		return s.repo.FindByName(ctx, name)
	}
	return r, nil
}

func (s *Service) ensureUnique(ctx context.Context, name, excludeID string) error {
	taken, err := s.repo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &internalShared.DuplicateNameError{Kind: "reason"}
	}
	return nil
}
