package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
	"github.com/medease/medease/internal/platform/auth"
)

const upcomingLimit = 5

// Service implements booking, status management and the dashboard queries.
type Service struct {
	appts   Repository
	doctors DoctorDirectory

	// now is swapped in tests to pin the day boundary checks.
	now func() time.Time
}

func NewService(appts Repository, doctors DoctorDirectory) *Service {
	return &Service{appts: appts, doctors: doctors, now: time.Now}
}

type CreateAppointmentRequest struct {
	DoctorID        string  `json:"doctor_id" validate:"required,uuid"`
	AppointmentDate string  `json:"appointment_date" validate:"required"`
	AppointmentTime string  `json:"appointment_time" validate:"required"`
	Notes           *string `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CancelResult struct {
	Message     string       `json:"message"`
	Appointment *Appointment `json:"appointment"`
}

// Create books a slot for the patient. The slot must come from the fixed
// catalogue and must not already hold a PENDING or CONFIRMED appointment
// for the doctor on that date.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID, req CreateAppointmentRequest) (*Appointment, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, httpapi.Invalid("doctor_id must be a valid id")
	}
	doctor, err := s.doctors.GetDoctorSummary(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !ValidSlotLabel(req.AppointmentTime) {
		return nil, httpapi.Invalid("invalid time slot")
	}
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		return nil, httpapi.Invalid("appointment_date must be a valid date")
	}

	appt := &Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		Notes:           req.Notes,
	}
	if err := s.appts.CreateIfFree(ctx, appt); err != nil {
		return nil, err
	}
	appt.Doctor = doctor
	return appt, nil
}

// Get returns a single appointment. Only the booking patient, the assigned
// doctor or an admin may read it.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.mayAccess(appt, userID, role) {
		return nil, ErrAccessDenied
	}
	return appt, nil
}

// UpdateStatus moves an appointment to a new status. Only the assigned
// doctor or an admin may update; COMPLETED additionally requires the
// appointment to be CONFIRMED and its date to not lie in the future.
func (s *Service) UpdateStatus(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, httpapi.Invalid("invalid status")
	}
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != auth.RoleAdmin && !(role == auth.RoleDoctor && appt.DoctorID == userID) {
		return nil, httpapi.Forbidden("only the assigned doctor can update appointment status")
	}
	if status == StatusCompleted {
		if appt.Status != StatusConfirmed {
			return nil, httpapi.Invalid("only confirmed appointments can be marked as completed")
		}
		if appt.AppointmentDate.After(s.today()) {
			return nil, httpapi.Invalid("cannot mark future appointments as completed")
		}
	}
	if err := s.appts.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	appt.Status = status
	return appt, nil
}

// Cancel soft-cancels an appointment. The booking patient, the assigned
// doctor and admins may all cancel at any time.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*CancelResult, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.mayAccess(appt, userID, role) {
		return nil, ErrAccessDenied
	}
	if err := s.appts.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	appt.Status = StatusCancelled
	return &CancelResult{Message: "appointment cancelled successfully", Appointment: appt}, nil
}

func (s *Service) PatientAppointments(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appts.ListByPatient(ctx, patientID)
}

func (s *Service) DoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return s.appts.ListByDoctor(ctx, doctorID)
}

// AvailableSlots returns the catalogue for one doctor and date with the
// occupied labels removed. A doctor with no appointments on the date, or
// an unknown doctor id, yields the full catalogue.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, dateStr string) (*AvailableSlots, error) {
	if dateStr == "" {
		return nil, httpapi.Invalid("date parameter is required")
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, httpapi.Invalid("date must be a valid date")
	}
	booked, err := s.appts.BookedSlots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}
	return &AvailableSlots{
		Morning:   free(morningSlots, taken),
		Afternoon: free(afternoonSlots, taken),
		Evening:   free(eveningSlots, taken),
	}, nil
}

func free(band []string, taken map[string]bool) []string {
	out := make([]string, 0, len(band))
	for _, slot := range band {
		if !taken[slot] {
			out = append(out, slot)
		}
	}
	return out
}

// PatientStats buckets the patient's appointments by status. Upcoming counts
// PENDING and CONFIRMED regardless of date.
func (s *Service) PatientStats(ctx context.Context, patientID uuid.UUID) (*PatientStats, error) {
	counts, err := s.appts.StatusCountsByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return &PatientStats{
		TotalAppointments:     total,
		UpcomingAppointments:  counts[StatusPending] + counts[StatusConfirmed],
		CompletedAppointments: counts[StatusCompleted],
		CancelledAppointments: counts[StatusCancelled],
	}, nil
}

// PatientUpcoming returns the patient's next appointments from today on,
// soonest first, flattened for the dashboard.
func (s *Service) PatientUpcoming(ctx context.Context, patientID uuid.UUID) ([]UpcomingAppointment, error) {
	appts, err := s.appts.Upcoming(ctx, patientID, s.today(), upcomingLimit)
	if err != nil {
		return nil, err
	}
	out := make([]UpcomingAppointment, 0, len(appts))
	for _, a := range appts {
		u := UpcomingAppointment{
			ID:       a.ID,
			DoctorID: a.DoctorID,
			Date:     a.AppointmentDate,
			Time:     a.AppointmentTime,
			Status:   a.Status,
		}
		if a.Doctor != nil {
			u.DoctorName = a.Doctor.Name
			u.DoctorSpecialty = a.Doctor.Specialty
		}
		if a.Notes != nil {
			u.Reason = *a.Notes
		}
		out = append(out, u)
	}
	return out, nil
}

// DoctorStats computes the doctor's dashboard counters. The week window
// starts on Sunday and covers 7 days.
func (s *Service) DoctorStats(ctx context.Context, doctorID uuid.UUID) (*DoctorDashboardStats, error) {
	today := s.today()
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)

	active := []string{StatusPending, StatusConfirmed}
	stats := &DoctorDashboardStats{}
	var err error
	if stats.TotalPatients, err = s.appts.CountDistinctPatients(ctx, doctorID); err != nil {
		return nil, err
	}
	if stats.TodayAppointments, err = s.appts.CountByDoctorInRange(ctx, doctorID, today, tomorrow, active); err != nil {
		return nil, err
	}
	if stats.TodayPending, err = s.appts.CountByDoctorInRange(ctx, doctorID, today, tomorrow, []string{StatusPending}); err != nil {
		return nil, err
	}
	if stats.WeekAppointments, err = s.appts.CountByDoctorInRange(ctx, doctorID, weekStart, weekEnd, []string{StatusPending, StatusConfirmed, StatusCompleted}); err != nil {
		return nil, err
	}
	if stats.TotalPending, err = s.appts.CountByDoctorStatus(ctx, doctorID, []string{StatusPending}); err != nil {
		return nil, err
	}
	if stats.TotalCompleted, err = s.appts.CountByDoctorStatus(ctx, doctorID, []string{StatusCompleted}); err != nil {
		return nil, err
	}
	return stats, nil
}

// WeeklySchedule buckets the doctor's appointments into 7 consecutive days
// starting at startDate, or today when the caller omits it. Every status is
// included.
func (s *Service) WeeklySchedule(ctx context.Context, doctorID uuid.UUID, startDateStr string) (*WeeklySchedule, error) {
	start := s.today()
	if startDateStr != "" {
		var err error
		if start, err = parseDate(startDateStr); err != nil {
			return nil, httpapi.Invalid("start_date must be a valid date")
		}
	}
	end := start.AddDate(0, 0, 7)

	appts, err := s.appts.ListByDoctorInRange(ctx, doctorID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]*Appointment)
	for _, a := range appts {
		key := a.AppointmentDate.Format("2006-01-02")
		byDay[key] = append(byDay[key], a)
	}

	days := make([]ScheduleDay, 0, 7)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dayAppts := byDay[d.Format("2006-01-02")]
		if dayAppts == nil {
			dayAppts = []*Appointment{}
		}
		days = append(days, ScheduleDay{
			Date:              d,
			TotalAppointments: len(dayAppts),
			Appointments:      dayAppts,
		})
	}
	return &WeeklySchedule{StartDate: start, EndDate: end.AddDate(0, 0, -1), Days: days}, nil
}

func (s *Service) mayAccess(appt *Appointment, userID uuid.UUID, role string) bool {
	if role == auth.RoleAdmin {
		return true
	}
	return appt.PatientID == userID || appt.DoctorID == userID
}

// today truncates the clock to the local day boundary.
func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
