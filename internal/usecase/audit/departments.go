package audit

import (
	"context"
	"errors"

	"roundcheck/internal/ports"
)

// Departments returns the seeded catalog, id order.
func (s *Service) Departments(ctx context.Context) ([]ports.Department, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.repo.ListDepartments(ctx)
}
