package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists appointments. CreateIfFree must perform the
// conflict check and the insert as one atomic unit: two concurrent bookings
// of the same (doctor, date, slot) must never both succeed.
type Repository interface {
	CreateIfFree(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByDoctorInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	BookedSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
	StatusCountsByPatient(ctx context.Context, patientID uuid.UUID) (map[string]int, error)
	Upcoming(ctx context.Context, patientID uuid.UUID, from time.Time, limit int) ([]*Appointment, error)
	CountDistinctPatients(ctx context.Context, doctorID uuid.UUID) (int, error)
	CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
	CountByDoctorStatus(ctx context.Context, doctorID uuid.UUID, statuses []string) (int, error)
	CountByDoctorInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time, statuses []string) (int, error)
}

// DoctorDirectory resolves that a booking target is a registered doctor.
type DoctorDirectory interface {
	GetDoctorSummary(ctx context.Context, id uuid.UUID) (*DoctorSummary, error)
}
