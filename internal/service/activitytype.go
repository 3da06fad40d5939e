package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmvalente/drivelog/internal/domain"
)

// ActivityTypeService exposes the fixed work-event type registry.
type ActivityTypeService struct {
	types domain.ActivityTypeRepository
}

// NewActivityTypeService creates a new ActivityTypeService.
func NewActivityTypeService(types domain.ActivityTypeRepository) *ActivityTypeService {
	return &ActivityTypeService{types: types}
}

// List returns all activity types ordered by code ascending.
func (s *ActivityTypeService) List(ctx context.Context) ([]domain.ActivityType, error) {
	return s.types.List(ctx)
}

// Get returns the activity type for a code, or domain.ErrNotFound.
func (s *ActivityTypeService) Get(ctx context.Context, code int) (*domain.ActivityType, error) {
	return s.types.GetByCode(ctx, code)
}

// Seed inserts the fixed activity types. Existing codes are skipped, so
// repeated startup runs never duplicate rows.
func (s *ActivityTypeService) Seed(ctx context.Context) error {
	for _, t := range seededTypes {
		_, err := s.types.GetByCode(ctx, t.Code)
		if err == nil {
			continue // already exists
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("check type %d: %w", t.Code, err)
		}
		if err := s.types.Create(ctx, &t); err != nil {
			return fmt.Errorf("seed type %d: %w", t.Code, err)
		}
	}
	return nil
}

var seededTypes = []domain.ActivityType{
	{Code: 1, Name: "Carga"},
	{Code: 2, Name: "Descarga"},
	{Code: 3, Name: "Inicio de turno"},
	{Code: 4, Name: "Termino de turno"},
	{Code: 5, Name: "Abastecimento"},
	{Code: 6, Name: "Pausa 9"},
	{Code: 7, Name: "Pausa 11"},
	{Code: 8, Name: "Observacoes"},
}
