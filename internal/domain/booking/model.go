package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
)

// Appointment statuses. PENDING may move to CONFIRMED or CANCELLED;
// CONFIRMED may move to COMPLETED or CANCELLED. Cancellation is always
// allowed and is a soft state change, never a row deletion.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusConfirmed: true, StatusCancelled: true, StatusCompleted: true,
}

var (
	ErrAppointmentNotFound = httpapi.NotFound("appointment not found")
	ErrDoctorNotFound      = httpapi.NotFound("doctor not found")
	ErrSlotTaken           = httpapi.Conflict("this time slot is already booked")
	ErrAccessDenied        = httpapi.Forbidden("access denied")
)

// The fixed slot catalogue shared by every doctor. Labels identify bookable
// instants, not durations; order within a band is the display order.
var (
	morningSlots   = []string{"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM"}
	afternoonSlots = []string{"02:00 PM", "02:30 PM", "03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM"}
	eveningSlots   = []string{"05:00 PM", "05:30 PM", "06:00 PM", "06:30 PM", "07:00 PM"}
)

// AvailableSlots is the remaining catalogue for one doctor and date, grouped
// by band.
type AvailableSlots struct {
	Morning   []string `json:"morning"`
	Afternoon []string `json:"afternoon"`
	Evening   []string `json:"evening"`
}

// ValidSlotLabel reports whether the label exists in the catalogue.
func ValidSlotLabel(label string) bool {
	for _, band := range [][]string{morningSlots, afternoonSlots, eveningSlots} {
		for _, slot := range band {
			if slot == label {
				return true
			}
		}
	}
	return false
}

// DoctorSummary is the denormalized doctor view attached to appointments.
type DoctorSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Specialty *string   `json:"specialty,omitempty"`
}

// PatientSummary is the denormalized patient view attached to appointments.
type PatientSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Gender *string   `json:"gender,omitempty"`
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	Doctor  *DoctorSummary  `db:"-" json:"doctor,omitempty"`
	Patient *PatientSummary `db:"-" json:"patient,omitempty"`
}

// PatientStats counts a patient's appointments by status bucket.
type PatientStats struct {
	TotalAppointments     int `json:"total_appointments"`
	UpcomingAppointments  int `json:"upcoming_appointments"`
	CompletedAppointments int `json:"completed_appointments"`
	CancelledAppointments int `json:"cancelled_appointments"`
}

// DoctorDashboardStats drives the doctor's dashboard counters.
type DoctorDashboardStats struct {
	TotalPatients     int `json:"total_patients"`
	TodayAppointments int `json:"today_appointments"`
	TodayPending      int `json:"today_pending"`
	WeekAppointments  int `json:"week_appointments"`
	TotalPending      int `json:"total_pending"`
	TotalCompleted    int `json:"total_completed"`
}

// UpcomingAppointment is the flattened view on the patient dashboard.
type UpcomingAppointment struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name"`
	DoctorSpecialty *string   `json:"doctor_specialty,omitempty"`
	Date            time.Time `json:"date"`
	Time            string    `json:"time"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason"`
}

// ScheduleDay is one bucket of a doctor's 7-day schedule.
type ScheduleDay struct {
	Date              time.Time      `json:"date"`
	TotalAppointments int            `json:"total_appointments"`
	Appointments      []*Appointment `json:"appointments"`
}

// WeeklySchedule is a doctor's appointments over 7 consecutive days.
type WeeklySchedule struct {
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Days      []ScheduleDay `json:"days"`
}
