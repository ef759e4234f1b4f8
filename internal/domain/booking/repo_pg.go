package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

// apptCols joins the denormalized doctor and patient summaries used by every
// read path.
const apptCols = `a.id, a.patient_id, a.doctor_id, a.appointment_date, a.appointment_time,
	a.status, a.notes, a.created_at, a.updated_at,
	d.id, d.name, d.email, d.specialty,
	p.id, p.name, p.email, p.gender`

const apptFrom = ` FROM appointments a
	JOIN users d ON d.id = a.doctor_id
	JOIN users p ON p.id = a.patient_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var doc DoctorSummary
	var pat PatientSummary
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.AppointmentTime,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&doc.ID, &doc.Name, &doc.Email, &doc.Specialty,
		&pat.ID, &pat.Name, &pat.Email, &pat.Gender)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Doctor = &doc
	a.Patient = &pat
	return &a, nil
}

// CreateIfFree checks the slot and inserts within one transaction. The
// partial unique index on (doctor_id, appointment_date, appointment_time)
// for PENDING/CONFIRMED rows backstops the check, so a concurrent writer
// that slips past it still fails with a unique violation.
func (r *repoPG) CreateIfFree(ctx context.Context, a *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var occupied bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
			  AND status IN ('PENDING','CONFIRMED')
		)`, a.DoctorID, a.AppointmentDate, a.AppointmentTime).Scan(&occupied)
	if err != nil {
		return fmt.Errorf("checking slot: %w", err)
	}
	if occupied {
		return ErrSlotTaken
	}

	a.ID = uuid.New()
	a.Status = StatusPending
	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, appointment_date, appointment_time, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.AppointmentTime, a.Status, a.Notes)
	if err != nil {
		return mapInsertError(err)
	}

	return tx.Commit(ctx)
}

// mapInsertError translates a unique violation on the active-slot index into
// ErrSlotTaken so a concurrent booking surfaces as a conflict, not a 500.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlotTaken
	}
	return fmt.Errorf("inserting appointment: %w", err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE appointments SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *repoPG) queryAppointments(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE a.patient_id = $1 ORDER BY a.appointment_date DESC`, patientID)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE a.doctor_id = $1 ORDER BY a.appointment_date DESC`, doctorID)
}

func (r *repoPG) ListByDoctorInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+`
		 WHERE a.doctor_id = $1 AND a.appointment_date >= $2 AND a.appointment_date < $3
		 ORDER BY a.appointment_date ASC, a.appointment_time ASC`,
		doctorID, from, to)
}

func (r *repoPG) BookedSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT appointment_time FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND status IN ('PENDING','CONFIRMED')`,
		doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (r *repoPG) StatusCountsByPatient(ctx context.Context, patientID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM appointments WHERE patient_id = $1 GROUP BY status`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *repoPG) Upcoming(ctx context.Context, patientID uuid.UUID, from time.Time, limit int) ([]*Appointment, error) {
	return r.queryAppointments(ctx,
		`SELECT `+apptCols+apptFrom+`
		 WHERE a.patient_id = $1 AND a.appointment_date >= $2 AND a.status IN ('PENDING','CONFIRMED')
		 ORDER BY a.appointment_date ASC
		 LIMIT $3`,
		patientID, from, limit)
}

func (r *repoPG) CountDistinctPatients(ctx context.Context, doctorID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT patient_id) FROM appointments WHERE doctor_id = $1`, doctorID).Scan(&n)
	return n, err
}

func (r *repoPG) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE doctor_id = $1`, doctorID).Scan(&n)
	return n, err
}

func (r *repoPG) CountByDoctorStatus(ctx context.Context, doctorID uuid.UUID, statuses []string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND status = ANY($2)`,
		doctorID, statuses).Scan(&n)
	return n, err
}

func (r *repoPG) CountByDoctorInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time, statuses []string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND appointment_date >= $2 AND appointment_date < $3 AND status = ANY($4)`,
		doctorID, from, to, statuses).Scan(&n)
	return n, err
}
