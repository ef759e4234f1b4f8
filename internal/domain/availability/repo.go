package availability

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists availability rules. Replace swaps a doctor's entire
// rule set atomically; a partial replacement must never be observable.
type Repository interface {
	Replace(ctx context.Context, doctorID uuid.UUID, rules []*Rule) error
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error
	ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Rule, error)
}

// DoctorDirectory resolves doctor identities for the public lookup path.
type DoctorDirectory interface {
	GetDoctorName(ctx context.Context, doctorID uuid.UUID) (string, error)
}
