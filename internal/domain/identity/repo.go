package identity

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	ListDoctors(ctx context.Context, specialty string, limit, offset int) ([]*User, int, error)
}

// AvailabilityProvider supplies a doctor's active weekly availability grouped
// by weekday.
type AvailabilityProvider interface {
	ActiveSlotsByDay(ctx context.Context, doctorID uuid.UUID) (map[int][]string, error)
}

// BookingStatsProvider supplies booking counters shown on the doctor page.
type BookingStatsProvider interface {
	CountDistinctPatients(ctx context.Context, doctorID uuid.UUID) (int, error)
	CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
}
