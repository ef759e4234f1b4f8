package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
)

var ErrDoctorNotFound = httpapi.NotFound("doctor not found")

// Rule maps to the availability_rules table. Each row is one (weekday, slot
// label) pair of a doctor's recurring weekly pattern; a calendar-date booking
// is a separate concern.
type Rule struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	TimeSlot  string    `db:"time_slot" json:"time_slot"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WeeklyPattern is a doctor's availability grouped by weekday.
type WeeklyPattern struct {
	AvailableDays []int            `json:"available_days"`
	TimeSlots     []string         `json:"time_slots"`
	Details       map[int][]string `json:"details"`
}

// DoctorPattern is the public view of another doctor's availability.
type DoctorPattern struct {
	DoctorID      uuid.UUID        `json:"doctor_id"`
	DoctorName    string           `json:"doctor_name"`
	AvailableDays []int            `json:"available_days"`
	Availability  map[int][]string `json:"availability"`
}
