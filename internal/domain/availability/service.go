package availability

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
)

// Service manages doctors' recurring weekly availability patterns.
type Service struct {
	rules   Repository
	doctors DoctorDirectory
}

func NewService(rules Repository, doctors DoctorDirectory) *Service {
	return &Service{rules: rules, doctors: doctors}
}

type SetAvailabilityRequest struct {
	AvailableDays []int    `json:"available_days" validate:"required,dive,min=0,max=6"`
	TimeSlots     []string `json:"time_slots" validate:"required"`
}

// SetResult reports what a replacement wrote.
type SetResult struct {
	Message       string   `json:"message"`
	TotalSlots    int      `json:"total_slots"`
	AvailableDays []int    `json:"available_days"`
	TimeSlots     []string `json:"time_slots"`
}

// Set replaces the doctor's entire availability with the cross product of
// days and slot labels. The previous pattern is never merged with the new one.
func (s *Service) Set(ctx context.Context, doctorID uuid.UUID, req SetAvailabilityRequest) (*SetResult, error) {
	for _, day := range req.AvailableDays {
		if day < 0 || day > 6 {
			return nil, httpapi.Invalid("day_of_week must be between 0 and 6")
		}
	}

	rules := make([]*Rule, 0, len(req.AvailableDays)*len(req.TimeSlots))
	for _, day := range req.AvailableDays {
		for _, slot := range req.TimeSlots {
			rules = append(rules, &Rule{DayOfWeek: day, TimeSlot: slot})
		}
	}

	if err := s.rules.Replace(ctx, doctorID, rules); err != nil {
		return nil, err
	}

	return &SetResult{
		Message:       "availability updated successfully",
		TotalSlots:    len(rules),
		AvailableDays: req.AvailableDays,
		TimeSlots:     req.TimeSlots,
	}, nil
}

// Clear removes all of the doctor's availability rules.
func (s *Service) Clear(ctx context.Context, doctorID uuid.UUID) error {
	return s.rules.DeleteByDoctor(ctx, doctorID)
}

// MyPattern returns the calling doctor's availability grouped by weekday.
func (s *Service) MyPattern(ctx context.Context, doctorID uuid.UUID) (*WeeklyPattern, error) {
	grouped, err := s.ActiveSlotsByDay(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	days := sortedKeys(grouped)

	seen := make(map[string]bool)
	var slots []string
	for _, day := range days {
		for _, slot := range grouped[day] {
			if !seen[slot] {
				seen[slot] = true
				slots = append(slots, slot)
			}
		}
	}

	return &WeeklyPattern{AvailableDays: days, TimeSlots: slots, Details: grouped}, nil
}

// DoctorPattern returns another doctor's public availability. A missing user
// or a non-doctor id reports doctor-not-found.
func (s *Service) DoctorPattern(ctx context.Context, doctorID uuid.UUID) (*DoctorPattern, error) {
	name, err := s.doctors.GetDoctorName(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	grouped, err := s.ActiveSlotsByDay(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	return &DoctorPattern{
		DoctorID:      doctorID,
		DoctorName:    name,
		AvailableDays: sortedKeys(grouped),
		Availability:  grouped,
	}, nil
}

// ActiveSlotsByDay groups the doctor's active rules by weekday. Also serves
// the identity domain's doctor detail page.
func (s *Service) ActiveSlotsByDay(ctx context.Context, doctorID uuid.UUID) (map[int][]string, error) {
	rules, err := s.rules.ListActiveByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int][]string)
	for _, rule := range rules {
		grouped[rule.DayOfWeek] = append(grouped[rule.DayOfWeek], rule.TimeSlot)
	}
	return grouped, nil
}

func sortedKeys(m map[int][]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
