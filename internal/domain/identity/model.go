package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
)

// Roles assignable to a user account.
const (
	RolePatient = "PATIENT"
	RoleDoctor  = "DOCTOR"
	RoleAdmin   = "ADMIN"
)

var validGenders = map[string]bool{
	"MALE": true, "FEMALE": true, "OTHER": true,
}

var validSpecialties = map[string]bool{
	"CARDIOLOGIST":      true,
	"DERMATOLOGIST":     true,
	"PEDIATRICIAN":      true,
	"NEUROLOGIST":       true,
	"ORTHOPEDIC":        true,
	"PSYCHIATRIST":      true,
	"GENERAL_PHYSICIAN": true,
	"GYNECOLOGIST":      true,
	"OPHTHALMOLOGIST":   true,
	"ENT_SPECIALIST":    true,
	"DENTIST":           true,
	"OTHER":             true,
}

var (
	ErrUserExists         = httpapi.Conflict("user already exists")
	ErrInvalidCredentials = httpapi.Unauthorized("invalid email or password")
	ErrUserNotFound       = httpapi.NotFound("user not found")
	ErrDoctorNotFound     = httpapi.NotFound("doctor not found")
)

// User maps to the users table. A single table carries patients, doctors and
// admins; role-specific columns are nullable.
type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Name            string     `db:"name" json:"name"`
	Role            string     `db:"role" json:"role"`
	Gender          *string    `db:"gender" json:"gender,omitempty"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth     *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address         *string    `db:"address" json:"address,omitempty"`
	BloodGroup      *string    `db:"blood_group" json:"blood_group,omitempty"`
	Allergies       *string    `db:"allergies" json:"allergies,omitempty"`
	Specialty       *string    `db:"specialty" json:"specialty,omitempty"`
	Bio             *string    `db:"bio" json:"bio,omitempty"`
	Hospital        *string    `db:"hospital" json:"hospital,omitempty"`
	Experience      *string    `db:"experience" json:"experience,omitempty"`
	LicenseNumber   *string    `db:"license_number" json:"license_number,omitempty"`
	ConsultationFee *string    `db:"consultation_fee" json:"consultation_fee,omitempty"`
	Education       *string    `db:"education" json:"education,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Profile is the public projection of a user exposed to other users, e.g. in
// doctor listings and conversation summaries.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Gender    *string   `json:"gender,omitempty"`
	Specialty *string   `json:"specialty,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Hospital  *string   `json:"hospital,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicProfile returns the user's public projection.
func (u *User) PublicProfile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Gender:    u.Gender,
		Specialty: u.Specialty,
		Bio:       u.Bio,
		Hospital:  u.Hospital,
		CreatedAt: u.CreatedAt,
	}
}

// DoctorAvailability groups a doctor's active availability rules by weekday.
type DoctorAvailability struct {
	Days  []int            `json:"days"`
	Slots map[int][]string `json:"slots"`
}

// DoctorStats summarizes a doctor's booking history for the public doctor page.
type DoctorStats struct {
	TotalPatients     int `json:"total_patients"`
	TotalAppointments int `json:"total_appointments"`
}

// DoctorDetail is a doctor profile enriched with availability and stats.
type DoctorDetail struct {
	*User
	Availability DoctorAvailability `json:"availability"`
	Stats        DoctorStats       `json:"stats"`
}
