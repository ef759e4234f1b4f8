package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Manager struct {
	services Repository
}

func NewManager(services Repository) *Manager {
	return &Manager{services: services}
}

type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Duration    int     `json:"duration" validate:"required,gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
}

func (m *Manager) Create(ctx context.Context, req CreateServiceRequest) (*Service, error) {
	s := &Service{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       req.Price,
	}
	if err := m.services.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Service, error) {
	return m.services.GetByID(ctx, id)
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Duration    *int     `json:"duration" validate:"omitempty,gt=0"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}

func (m *Manager) Update(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*Service, error) {
	s, err := m.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.Description != nil {
		s.Description = req.Description
	}
	if req.Duration != nil {
		s.Duration = *req.Duration
	}
	if req.Price != nil {
		s.Price = *req.Price
	}

	if err := m.services.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.services.Deactivate(ctx, id)
}

func (m *Manager) ListActive(ctx context.Context) ([]*Service, error) {
	return m.services.ListActive(ctx)
}
