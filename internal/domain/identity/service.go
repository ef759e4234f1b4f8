package identity

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
	"github.com/medease/medease/internal/platform/auth"
	"github.com/medease/medease/pkg/pagination"
)

// Service implements registration, login and profile management.
type Service struct {
	users        Repository
	tokens       *auth.TokenIssuer
	availability AvailabilityProvider
	bookings     BookingStatsProvider
}

func NewService(users Repository, tokens *auth.TokenIssuer, availability AvailabilityProvider, bookings BookingStatsProvider) *Service {
	return &Service{users: users, tokens: tokens, availability: availability, bookings: bookings}
}

type RegisterPatientRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Gender   string `json:"gender" validate:"required"`
}

type RegisterDoctorRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Name      string `json:"name" validate:"required"`
	Specialty string `json:"specialty" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult pairs a user with a freshly issued access token.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (s *Service) RegisterPatient(ctx context.Context, req RegisterPatientRequest) (*AuthResult, error) {
	if !validGenders[req.Gender] {
		return nil, httpapi.Invalid("invalid gender: %s", req.Gender)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         RolePatient,
		Gender:       &req.Gender,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.authResult(u)
}

func (s *Service) RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*AuthResult, error) {
	if !validSpecialties[req.Specialty] {
		return nil, httpapi.Invalid("invalid specialty: %s", req.Specialty)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         RoleDoctor,
		Specialty:    &req.Specialty,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.authResult(u)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.authResult(u)
}

func (s *Service) authResult(u *User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

type UpdatePatientProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *string `json:"gender"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	BloodGroup  *string `json:"blood_group" validate:"omitempty,max=10"`
	Allergies   *string `json:"allergies" validate:"omitempty,max=500"`
}

func (s *Service) UpdatePatientProfile(ctx context.Context, userID uuid.UUID, req UpdatePatientProfileRequest) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Gender != nil && !validGenders[*req.Gender] {
		return nil, httpapi.Invalid("invalid gender: %s", *req.Gender)
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return nil, httpapi.Invalid("invalid date_of_birth: %s", *req.DateOfBirth)
		}
		u.DateOfBirth = &dob
	}

	applyString(&u.Name, req.Name)
	applyStringPtr(&u.Phone, req.Phone)
	applyStringPtr(&u.Gender, req.Gender)
	applyStringPtr(&u.Address, req.Address)
	applyStringPtr(&u.BloodGroup, req.BloodGroup)
	applyStringPtr(&u.Allergies, req.Allergies)

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type UpdateDoctorProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	Bio             *string `json:"bio" validate:"omitempty,max=500"`
	Hospital        *string `json:"hospital" validate:"omitempty,max=200"`
	Experience      *string `json:"experience" validate:"omitempty,max=100"`
	Address         *string `json:"address" validate:"omitempty,max=500"`
	LicenseNumber   *string `json:"license_number" validate:"omitempty,max=50"`
	ConsultationFee *string `json:"consultation_fee" validate:"omitempty,max=20"`
	Education       *string `json:"education" validate:"omitempty,max=300"`
}

func (s *Service) UpdateDoctorProfile(ctx context.Context, userID uuid.UUID, req UpdateDoctorProfileRequest) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyString(&u.Name, req.Name)
	applyStringPtr(&u.Phone, req.Phone)
	applyStringPtr(&u.Bio, req.Bio)
	applyStringPtr(&u.Hospital, req.Hospital)
	applyStringPtr(&u.Experience, req.Experience)
	applyStringPtr(&u.Address, req.Address)
	applyStringPtr(&u.LicenseNumber, req.LicenseNumber)
	applyStringPtr(&u.ConsultationFee, req.ConsultationFee)
	applyStringPtr(&u.Education, req.Education)

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type CompleteDoctorProfileRequest struct {
	Bio        *string `json:"bio" validate:"omitempty,max=500"`
	Hospital   *string `json:"hospital" validate:"omitempty,max=200"`
	Experience *string `json:"experience" validate:"omitempty,max=100"`
}

func (s *Service) CompleteDoctorProfile(ctx context.Context, userID uuid.UUID, req CompleteDoctorProfileRequest) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyStringPtr(&u.Bio, req.Bio)
	applyStringPtr(&u.Hospital, req.Hospital)
	applyStringPtr(&u.Experience, req.Experience)

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListDoctors returns a page of public doctor profiles, optionally filtered
// by specialty.
func (s *Service) ListDoctors(ctx context.Context, specialty string, p pagination.Params) (*pagination.Response, error) {
	if specialty != "" && !validSpecialties[specialty] {
		return nil, httpapi.Invalid("invalid specialty: %s", specialty)
	}

	doctors, total, err := s.users.ListDoctors(ctx, specialty, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(doctors))
	for _, d := range doctors {
		profiles = append(profiles, d.PublicProfile())
	}
	return pagination.NewResponse(profiles, total, p.Limit, p.Offset), nil
}

// GetDoctor returns a doctor's profile enriched with weekly availability and
// booking stats. Users that exist but are not doctors are reported as absent.
func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*DoctorDetail, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	if u.Role != RoleDoctor {
		return nil, ErrDoctorNotFound
	}

	slotsByDay, err := s.availability.ActiveSlotsByDay(ctx, id)
	if err != nil {
		return nil, err
	}
	days := make([]int, 0, len(slotsByDay))
	for day := range slotsByDay {
		days = append(days, day)
	}
	sort.Ints(days)

	totalPatients, err := s.bookings.CountDistinctPatients(ctx, id)
	if err != nil {
		return nil, err
	}
	totalAppointments, err := s.bookings.CountByDoctor(ctx, id)
	if err != nil {
		return nil, err
	}

	u.PasswordHash = ""
	return &DoctorDetail{
		User:         u,
		Availability: DoctorAvailability{Days: days, Slots: slotsByDay},
		Stats: DoctorStats{
			TotalPatients:     totalPatients,
			TotalAppointments: totalAppointments,
		},
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyStringPtr(dst **string, src *string) {
	if src != nil {
		*dst = src
	}
}
