package categories

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

// Service applies catalog rules to categories.
type Service struct {
	repo Repository
	now  internalShared.Clock
}

// NewService wires a Repository. A nil clock uses UTC wall time.
func NewService(repo Repository, clock internalShared.Clock) *Service {
	if clock == nil {
		clock = internalShared.UTCNow
	}
	return &Service{repo: repo, now: clock}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

// Active lists categories offered in product forms.
func (s *Service) Active(ctx context.Context) ([]Category, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	id, err := shared.ParseID(id)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Get(ctx, id)
}

// Create adds an active category stamped with actor.
func (s *Service) Create(ctx context.Context, actor internalShared.Actor, in Input) (Category, error) {
	in = in.trimmed()
	if err := validate(in); err != nil {
		return Category{}, err
	}
	if err := s.ensureUnique(ctx, in.Name, ""); err != nil {
		return Category{}, err
	}
	c := Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		IsActive:    true,
		Audit:       internalShared.NewAudit(actor, s.now()),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

// Update edits name and description.
func (s *Service) Update(ctx context.Context, actor internalShared.Actor, id string, in Input) (Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	in = in.trimmed()
	if err := validate(in); err != nil {
		return Category{}, err
	}
	if err := s.ensureUnique(ctx, in.Name, c.ID); err != nil {
		return Category{}, err
	}
	c.Name = in.Name
	c.Description = in.Description
	c.Touch(actor, s.now())
	if err := s.repo.Update(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

// ToggleActive flips the active flag.
func (s *Service) ToggleActive(ctx context.Context, actor internalShared.Actor, id string) (Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	c.IsActive = !c.IsActive
	c.Touch(actor, s.now())
	if err := s.repo.Update(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *Service) ensureUnique(ctx context.Context, name, excludeID string) error {
	taken, err := s.repo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &internalShared.DuplicateNameError{Kind: "category"}
	}
	return nil
}
