package cases

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service enforces the case lifecycle on top of a Repository. It holds no
// case state of its own.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetCase returns the stored case or an ErrNotFound error.
func (s *Service) GetCase(ctx context.Context, id string) (Case, error) {
	c, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Case{}, fmt.Errorf("cases: get case: %w", err)
	}
	if !ok {
		return Case{}, notFound(id)
	}
	return c, nil
}

// AssignExpert moves a submitted case to assigned and records the expert.
// Every other status is rejected with ErrInvalidState, including a case that
// is already assigned.
func (s *Service) AssignExpert(ctx context.Context, caseID, expertID string) (Assignment, error) {
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return Assignment{}, err
	}

	if !c.Status.CanAdvanceTo(StatusAssigned) {
		return Assignment{}, notAssignable(caseID, c.Status)
	}

	prior := c.Status
	c.Status = StatusAssigned
	c.ExpertID = &expertID

	if err := s.persist(ctx, c, prior); err != nil {
		return Assignment{}, err
	}

	return Assignment{
		CaseID:     c.ID,
		ExpertID:   expertID,
		AssignedAt: s.now().UTC(),
	}, nil
}

// persist uses a status compare-and-swap when the repository offers one so two
// racing assignments cannot both win.
func (s *Service) persist(ctx context.Context, c Case, prior Status) error {
	swapper, ok := s.repo.(StatusSwapper)
	if !ok {
		if err := s.repo.Save(ctx, c); err != nil {
			return fmt.Errorf("cases: save case: %w", err)
		}
		return nil
	}

	err := swapper.SaveIfStatus(ctx, c, prior)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStatusConflict):
		current, getErr := s.GetCase(ctx, c.ID)
		if getErr != nil {
			return getErr
		}
		return notAssignable(c.ID, current.Status)
	case errors.Is(err, ErrNotFound):
		return notFound(c.ID)
	default:
		return fmt.Errorf("cases: save case: %w", err)
	}
}
